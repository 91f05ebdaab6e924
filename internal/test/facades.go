package test

import (
	"context"
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (pkgAuth.Claims, error)
	LogoutFn       func(pkgAuth.Claims)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken returns user claims for any token by default.
func (s AuthFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{ID: "session", Subject: "alice", Role: model.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// Logout delegates to LogoutFn when set.
func (s AuthFacadeStub) Logout(claims pkgAuth.Claims) {
	if s.LogoutFn != nil {
		s.LogoutFn(claims)
	}
}

// ReturnFacadeStub provides controllable behaviour for customer return endpoints.
type ReturnFacadeStub struct {
	SubmitFn      func(context.Context, string, model.SubmitReturn) (*model.ReturnRecord, error)
	ReturnsFn     func(context.Context, string) ([]model.ReturnRecord, error)
	ProfileFn     func(context.Context, string) (*model.Profile, error)
	LeaderboardFn func(context.Context) ([]model.LeaderboardEntry, error)
}

// SubmitReturn delegates to SubmitFn or echoes the input as a priced record.
func (s ReturnFacadeStub) SubmitReturn(ctx context.Context, username string, in model.SubmitReturn) (*model.ReturnRecord, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, username, in)
	}
	record := SampleRecord(username)
	record.ProductName = in.ProductName
	return &record, nil
}

// Returns returns a single sample record by default.
func (s ReturnFacadeStub) Returns(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	if s.ReturnsFn != nil {
		return s.ReturnsFn(ctx, username)
	}
	return []model.ReturnRecord{SampleRecord(username)}, nil
}

// Profile returns an empty profile by default.
func (s ReturnFacadeStub) Profile(ctx context.Context, username string) (*model.Profile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, username)
	}
	return &model.Profile{Login: username}, nil
}

// Leaderboard returns a single entry by default.
func (s ReturnFacadeStub) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if s.LeaderboardFn != nil {
		return s.LeaderboardFn(ctx)
	}
	return []model.LeaderboardEntry{{Username: "alice", TotalCredit: 35, Returns: 1}}, nil
}

// AdminFacadeStub simulates admin console operations.
type AdminFacadeStub struct {
	AuthenticateFn func(context.Context, string, string) (string, error)
	LedgerFn       func(context.Context, string) ([]model.ReturnRecord, error)
	SummaryFn      func(context.Context) ([]model.ActionSummary, error)
	PolicyFn       func(context.Context) (model.RewardPolicy, error)
	UpdatePolicyFn func(context.Context, string, float64, *int64) (model.RewardPolicy, error)
	CreateAdminFn  func(context.Context, string, string) (*model.Admin, error)
}

// AdminAuthenticate returns an admin token by default.
func (s AdminFacadeStub) AdminAuthenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "admin-token", nil
}

// Ledger returns one sample record by default.
func (s AdminFacadeStub) Ledger(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	if s.LedgerFn != nil {
		return s.LedgerFn(ctx, username)
	}
	return []model.ReturnRecord{SampleRecord("alice")}, nil
}

// ActionSummary returns zero counts for every action by default.
func (s AdminFacadeStub) ActionSummary(ctx context.Context) ([]model.ActionSummary, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx)
	}
	out := make([]model.ActionSummary, 0, len(model.Actions))
	for _, a := range model.Actions {
		out = append(out, model.ActionSummary{Action: a})
	}
	return out, nil
}

// Policy returns the default policy by default.
func (s AdminFacadeStub) Policy(ctx context.Context) (model.RewardPolicy, error) {
	if s.PolicyFn != nil {
		return s.PolicyFn(ctx)
	}
	return model.RewardPolicy{Multiplier: 0.5}, nil
}

// UpdatePolicy returns version 1 with the supplied multiplier by default.
func (s AdminFacadeStub) UpdatePolicy(ctx context.Context, admin string, multiplier float64, expected *int64) (model.RewardPolicy, error) {
	if s.UpdatePolicyFn != nil {
		return s.UpdatePolicyFn(ctx, admin, multiplier, expected)
	}
	return model.RewardPolicy{Version: 1, Multiplier: multiplier, UpdatedBy: admin}, nil
}

// CreateAdmin returns a new admin by default.
func (s AdminFacadeStub) CreateAdmin(ctx context.Context, login, password string) (*model.Admin, error) {
	if s.CreateAdminFn != nil {
		return s.CreateAdminFn(ctx, login, password)
	}
	return &model.Admin{ID: 2, Login: login}, nil
}

// PortalFacadeStub aggregates facade dependencies for HTTP layer tests.
type PortalFacadeStub struct {
	AuthFacadeStub
	ReturnFacadeStub
	AdminFacadeStub
}

// SampleRecord returns a priced Good/80 return for username.
func SampleRecord(username string) model.ReturnRecord {
	return model.ReturnRecord{
		ID:            "00000000-0000-4000-8000-000000000001",
		Username:      username,
		ProductName:   "Kettle",
		Condition:     model.ConditionGood,
		DaysUsed:      80,
		Score:         70,
		Credit:        35,
		Action:        model.ActionResell,
		SubmittedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		PickupDate:    "2024-05-03",
		PickupTime:    "10:30",
		PolicyVersion: 0,
		ModelVersion:  "stub",
	}
}
