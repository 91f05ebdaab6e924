package handlers

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// AuthFacade describes customer authentication and session capabilities.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	Logout(claims pkgAuth.Claims)
}

// ReturnFacade encapsulates customer return operations exposed via HTTP.
type ReturnFacade interface {
	SubmitReturn(ctx context.Context, username string, in model.SubmitReturn) (*model.ReturnRecord, error)
	Returns(ctx context.Context, username string) ([]model.ReturnRecord, error)
	Profile(ctx context.Context, username string) (*model.Profile, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

// AdminFacade provides admin console operations.
type AdminFacade interface {
	AdminAuthenticate(ctx context.Context, login, password string) (string, error)
	Ledger(ctx context.Context, username string) ([]model.ReturnRecord, error)
	ActionSummary(ctx context.Context) ([]model.ActionSummary, error)
	Policy(ctx context.Context) (model.RewardPolicy, error)
	UpdatePolicy(ctx context.Context, admin string, multiplier float64, expectedVersion *int64) (model.RewardPolicy, error)
	CreateAdmin(ctx context.Context, login, password string) (*model.Admin, error)
}

// PortalFacade aggregates the full set of operations used across handlers.
type PortalFacade interface {
	AuthFacade
	ReturnFacade
	AdminFacade
}
