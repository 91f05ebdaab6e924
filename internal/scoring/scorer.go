// Package scoring turns a return's condition and usage into a resale score.
package scoring

import (
	"context"
	"errors"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

var (
	// ErrArtifactNotFound is returned when the model file does not exist.
	ErrArtifactNotFound = errors.New("scoring artifact not found")
	// ErrInvalidArtifact is returned for artifacts that cannot be decoded or fail validation.
	ErrInvalidArtifact = errors.New("invalid scoring artifact")
	// ErrUnknownCondition is returned for conditions outside the model vocabulary.
	ErrUnknownCondition = errors.New("condition not known to scoring model")
)

const (
	// MinScore and MaxScore bound every prediction.
	MinScore = 0.0
	MaxScore = 100.0
)

// Scorer predicts a score in [MinScore, MaxScore] for a return.
type Scorer interface {
	Score(ctx context.Context, condition model.Condition, daysUsed int) (model.Score, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, condition model.Condition, daysUsed int) (model.Score, error)

func (f ScorerFunc) Score(ctx context.Context, condition model.Condition, daysUsed int) (model.Score, error) {
	return f(ctx, condition, daysUsed)
}

// Clamp limits v to the score range.
func Clamp(v float64) float64 {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}
