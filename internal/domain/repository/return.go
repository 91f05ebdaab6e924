package repository

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// ReturnRepository is the append-only return ledger.
type ReturnRepository interface {
	Append(ctx context.Context, record model.ReturnRecord) error
	// ListByUser and ListAll return records newest first.
	ListByUser(ctx context.Context, username string) ([]model.ReturnRecord, error)
	ListAll(ctx context.Context) ([]model.ReturnRecord, error)
	TotalsByUser(ctx context.Context) ([]model.LeaderboardEntry, error)
}
