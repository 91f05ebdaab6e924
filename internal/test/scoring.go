package test

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// ScorerStub returns a fixed score unless ScoreFn is set.
type ScorerStub struct {
	Value   float64
	Version string
	Err     error
	ScoreFn func(context.Context, model.Condition, int) (model.Score, error)
	Calls   int
}

// Score implements scoring.Scorer.
func (s *ScorerStub) Score(ctx context.Context, condition model.Condition, daysUsed int) (model.Score, error) {
	s.Calls++
	if s.ScoreFn != nil {
		return s.ScoreFn(ctx, condition, daysUsed)
	}
	if s.Err != nil {
		return model.Score{}, s.Err
	}
	version := s.Version
	if version == "" {
		version = "stub"
	}
	return model.Score{Value: s.Value, ModelVersion: version}, nil
}

// RecorderStub counts submission outcomes and multiplier changes.
type RecorderStub struct {
	Submitted   map[model.Action]int
	Credit      int64
	Failures    map[string]int
	Multipliers []float64
}

// ReturnSubmitted records a successful submission.
func (r *RecorderStub) ReturnSubmitted(action model.Action, credit int64) {
	if r.Submitted == nil {
		r.Submitted = make(map[model.Action]int)
	}
	r.Submitted[action]++
	r.Credit += credit
}

// SubmissionFailed records a failed submission.
func (r *RecorderStub) SubmissionFailed(reason string) {
	if r.Failures == nil {
		r.Failures = make(map[string]int)
	}
	r.Failures[reason]++
}

// MultiplierChanged records the new multiplier.
func (r *RecorderStub) MultiplierChanged(multiplier float64) {
	r.Multipliers = append(r.Multipliers, multiplier)
}
