package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
)

// PolicyRecorder receives the multiplier whenever it changes.
type PolicyRecorder interface {
	MultiplierChanged(multiplier float64)
}

// PolicyUseCase reads and updates the versioned reward policy.
type PolicyUseCase struct {
	policies          repository.PolicyRepository
	defaultMultiplier float64
	recorder          PolicyRecorder
	logger            *slog.Logger
	now               func() time.Time
}

// NewPolicyUseCase constructs PolicyUseCase. defaultMultiplier backs version 0.
func NewPolicyUseCase(policies repository.PolicyRepository, defaultMultiplier float64, recorder PolicyRecorder, logger *slog.Logger) *PolicyUseCase {
	return &PolicyUseCase{
		policies:          policies,
		defaultMultiplier: defaultMultiplier,
		recorder:          recorder,
		logger:            logger,
		now:               time.Now,
	}
}

// Current returns the latest saved policy or the built-in default.
func (u *PolicyUseCase) Current(ctx context.Context) (model.RewardPolicy, error) {
	policy, err := u.policies.Current(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.RewardPolicy{Multiplier: u.defaultMultiplier}, nil
		}
		return model.RewardPolicy{}, fmt.Errorf("read reward policy: %w", err)
	}
	return *policy, nil
}

// Update saves multiplier as the next policy version. When expectedVersion is set
// the update only applies on top of that version.
func (u *PolicyUseCase) Update(ctx context.Context, admin string, multiplier float64, expectedVersion *int64) (model.RewardPolicy, error) {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier < 0 {
		return model.RewardPolicy{}, fmt.Errorf("%w: multiplier must be a non-negative number", domainErrors.ErrInvalidInput)
	}
	if multiplier > model.MaxMultiplier {
		return model.RewardPolicy{}, fmt.Errorf("%w: multiplier must not exceed %d", domainErrors.ErrInvalidInput, model.MaxMultiplier)
	}

	current, err := u.Current(ctx)
	if err != nil {
		return model.RewardPolicy{}, err
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		return model.RewardPolicy{}, fmt.Errorf("%w: policy is at version %d, not %d",
			domainErrors.ErrVersionConflict, current.Version, *expectedVersion)
	}

	next := model.RewardPolicy{
		Version:    current.Version + 1,
		Multiplier: multiplier,
		UpdatedBy:  admin,
		UpdatedAt:  u.now().UTC(),
	}
	if err := u.policies.Save(ctx, next); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			return model.RewardPolicy{}, fmt.Errorf("%w: policy version %d was saved concurrently",
				domainErrors.ErrVersionConflict, next.Version)
		}
		return model.RewardPolicy{}, fmt.Errorf("save reward policy: %w", err)
	}

	u.logger.Info("reward policy updated",
		slog.String("admin", admin),
		slog.Int64("version", next.Version),
		slog.Float64("old_multiplier", current.Multiplier),
		slog.Float64("new_multiplier", next.Multiplier),
	)
	if u.recorder != nil {
		u.recorder.MultiplierChanged(next.Multiplier)
	}
	return next, nil
}
