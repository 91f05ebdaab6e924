package app

import (
	"context"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
	"github.com/polkiloo/returnearn/internal/usecase"
)

// PortalFacade exposes the use cases behind the HTTP handlers.
type PortalFacade struct {
	auth     *usecase.AuthUseCase
	admins   *usecase.AdminUseCase
	sessions *usecase.SessionUseCase
	returns  *usecase.ReturnUseCase
	policies *usecase.PolicyUseCase
}

func NewPortalFacade(
	auth *usecase.AuthUseCase,
	admins *usecase.AdminUseCase,
	sessions *usecase.SessionUseCase,
	returns *usecase.ReturnUseCase,
	policies *usecase.PolicyUseCase,
) *PortalFacade {
	return &PortalFacade{auth: auth, admins: admins, sessions: sessions, returns: returns, policies: policies}
}

func (f *PortalFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *PortalFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *PortalFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.sessions.ParseToken(token)
}

func (f *PortalFacade) Logout(claims pkgAuth.Claims) {
	f.sessions.Logout(claims)
}

func (f *PortalFacade) SubmitReturn(ctx context.Context, username string, in model.SubmitReturn) (*model.ReturnRecord, error) {
	return f.returns.Submit(ctx, username, in)
}

func (f *PortalFacade) Returns(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	return f.returns.History(ctx, username)
}

func (f *PortalFacade) Profile(ctx context.Context, username string) (*model.Profile, error) {
	return f.returns.Profile(ctx, username)
}

func (f *PortalFacade) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return f.returns.Leaderboard(ctx)
}

func (f *PortalFacade) AdminAuthenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.admins.Authenticate(ctx, login, password)
	return token, err
}

func (f *PortalFacade) Ledger(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	return f.returns.Ledger(ctx, username)
}

func (f *PortalFacade) ActionSummary(ctx context.Context) ([]model.ActionSummary, error) {
	return f.returns.ActionSummary(ctx)
}

func (f *PortalFacade) Policy(ctx context.Context) (model.RewardPolicy, error) {
	return f.policies.Current(ctx)
}

func (f *PortalFacade) UpdatePolicy(ctx context.Context, admin string, multiplier float64, expectedVersion *int64) (model.RewardPolicy, error) {
	return f.policies.Update(ctx, admin, multiplier, expectedVersion)
}

func (f *PortalFacade) CreateAdmin(ctx context.Context, login, password string) (*model.Admin, error) {
	return f.admins.Create(ctx, login, password)
}
