package scoring

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/scoring"
)

// Module provides the scorer: the remote model server when configured,
// otherwise the local forest loaded from the artifact.
var Module = fx.Provide(newScorer)

type scorerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newScorer(p scorerParams) (scoring.Scorer, error) {
	return New(p.Config, p.Logger)
}

// New builds the scorer described by cfg.
func New(cfg *config.Config, logger *slog.Logger) (scoring.Scorer, error) {
	if cfg.ScoringServiceAddress != "" {
		client, err := NewHTTPClient(cfg.ScoringServiceAddress, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using remote scoring service", slog.String("url", cfg.ScoringServiceAddress))
		return client, nil
	}

	artifact, err := scoring.LoadArtifact(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	forest, err := scoring.NewForest(artifact)
	if err != nil {
		return nil, err
	}

	logger.Info("scoring model loaded",
		slog.String("path", cfg.ModelPath),
		slog.String("version", forest.Version()),
		slog.Int("trees", len(artifact.Trees)),
	)
	if missing := forest.Encoder().Missing(); len(missing) > 0 {
		logger.Warn("scoring vocabulary does not cover every condition", slog.Any("missing", missing))
	}
	return forest, nil
}
