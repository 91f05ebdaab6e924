package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	"github.com/polkiloo/returnearn/internal/metrics"
	"github.com/polkiloo/returnearn/internal/scoring"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewSessionUseCase,
	NewAuthUseCase,
	NewAdminUseCase,
	newPolicyUseCase,
	newReturnUseCase,
)

type policyParams struct {
	fx.In

	Policies repository.PolicyRepository
	Config   *config.Config
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newPolicyUseCase(p policyParams) *PolicyUseCase {
	return NewPolicyUseCase(p.Policies, p.Config.DefaultMultiplier, p.Metrics, p.Logger)
}

type returnParams struct {
	fx.In

	Returns  repository.ReturnRepository
	Scorer   scoring.Scorer
	Policies *PolicyUseCase
	Config   *config.Config
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newReturnUseCase(p returnParams) *ReturnUseCase {
	return NewReturnUseCase(ReturnDeps{
		Returns:         p.Returns,
		Scorer:          p.Scorer,
		Policies:        p.Policies,
		Recorder:        p.Metrics,
		Logger:          p.Logger,
		LeaderboardSize: p.Config.LeaderboardSize,
	})
}
