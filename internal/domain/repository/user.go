package repository

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// UserRepository describes persistence operations for customer credentials.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
}

// AdminRepository describes persistence operations for admin credentials.
type AdminRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.Admin, error)
	GetByLogin(ctx context.Context, login string) (*model.Admin, error)
}
