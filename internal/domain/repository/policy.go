package repository

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// PolicyRepository stores the reward policy as an append-only version history.
type PolicyRepository interface {
	// Current returns the latest version or ErrNotFound when none was saved.
	Current(ctx context.Context) (*model.RewardPolicy, error)
	// Save stores policy under its Version and fails with ErrVersionConflict
	// when that version already exists.
	Save(ctx context.Context, policy model.RewardPolicy) error
}
