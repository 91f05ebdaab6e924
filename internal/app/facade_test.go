package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
	testhelpers "github.com/polkiloo/returnearn/internal/test"
	"github.com/polkiloo/returnearn/internal/usecase"
)

type portal struct {
	facade   *PortalFacade
	returns  *testhelpers.ReturnRepositoryStub
	policies *testhelpers.PolicyRepositoryStub
	admins   *testhelpers.AdminRepositoryStub
	scorer   *testhelpers.ScorerStub
}

func newPortal(score float64) *portal {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	strategy := pkgAuth.NewHMACStrategy("test-secret", pkgAuth.Options{TTL: time.Hour})
	sessions := usecase.NewSessionUseCase(strategy, pkgAuth.NewRevocations())
	hasher := pkgAuth.NewBcryptHasher(4)

	p := &portal{
		returns:  &testhelpers.ReturnRepositoryStub{},
		policies: &testhelpers.PolicyRepositoryStub{},
		admins:   testhelpers.NewAdminRepositoryStub(),
		scorer:   &testhelpers.ScorerStub{Value: score},
	}
	policyUC := usecase.NewPolicyUseCase(p.policies, 0.5, nil, logger)
	returnUC := usecase.NewReturnUseCase(usecase.ReturnDeps{
		Returns:         p.returns,
		Scorer:          p.scorer,
		Policies:        policyUC,
		Logger:          logger,
		LeaderboardSize: 10,
	})
	p.facade = NewPortalFacade(
		usecase.NewAuthUseCase(testhelpers.NewUserRepositoryStub(), hasher, sessions),
		usecase.NewAdminUseCase(p.admins, hasher, sessions, logger),
		sessions,
		returnUC,
		policyUC,
	)
	return p
}

func TestPortalFacadeCustomerJourney(t *testing.T) {
	p := newPortal(70)
	ctx := context.Background()

	if _, err := p.facade.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	token, err := p.facade.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	claims, err := p.facade.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != model.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}

	days := 80
	record, err := p.facade.SubmitReturn(ctx, claims.Subject, model.SubmitReturn{
		ProductName: "Kettle",
		Condition:   "Good",
		DaysUsed:    &days,
		PickupDate:  "2024-05-03",
		PickupTime:  "10:30",
	})
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if record.Credit != 35 || record.Action != model.ActionResell {
		t.Fatalf("expected credit 35 routed to Resell, got %d %s", record.Credit, record.Action)
	}

	ledger, err := p.facade.Ledger(ctx, "")
	if err != nil {
		t.Fatalf("ledger returned error: %v", err)
	}
	if len(ledger) != 1 || ledger[0].Username != "alice" || ledger[0].Credit != 35 {
		t.Fatalf("expected one ledger row for alice, got %+v", ledger)
	}

	history, err := p.facade.Returns(ctx, "alice")
	if err != nil || len(history) != 1 {
		t.Fatalf("expected one history row, got %v: %v", history, err)
	}

	profile, err := p.facade.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile returned error: %v", err)
	}
	if profile.TotalCredit != 35 || profile.Returns != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	board, err := p.facade.Leaderboard(ctx)
	if err != nil || len(board) != 1 || board[0].Username != "alice" {
		t.Fatalf("unexpected leaderboard %+v: %v", board, err)
	}

	p.facade.Logout(claims)
	if _, err := p.facade.ParseToken(token); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestPortalFacadeRejectsBadPassword(t *testing.T) {
	p := newPortal(70)
	ctx := context.Background()
	if _, err := p.facade.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, err := p.facade.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := p.facade.Register(ctx, "alice", "other"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate registration to be rejected, got %v", err)
	}
}

func TestPortalFacadeAdminConsole(t *testing.T) {
	p := newPortal(20)
	ctx := context.Background()

	if _, err := p.facade.CreateAdmin(ctx, "root", "secret"); err != nil {
		t.Fatalf("create admin returned error: %v", err)
	}
	token, err := p.facade.AdminAuthenticate(ctx, "root", "secret")
	if err != nil {
		t.Fatalf("admin authenticate returned error: %v", err)
	}
	claims, err := p.facade.ParseToken(token)
	if err != nil || claims.Role != model.RoleAdmin {
		t.Fatalf("expected admin claims, got %+v: %v", claims, err)
	}

	policy, err := p.facade.Policy(ctx)
	if err != nil || policy.Multiplier != 0.5 || policy.Version != 0 {
		t.Fatalf("expected default policy, got %+v: %v", policy, err)
	}

	version := int64(0)
	updated, err := p.facade.UpdatePolicy(ctx, "root", 1.5, &version)
	if err != nil {
		t.Fatalf("update policy returned error: %v", err)
	}
	if updated.Version != 1 || updated.Multiplier != 1.5 || updated.UpdatedBy != "root" {
		t.Fatalf("unexpected updated policy %+v", updated)
	}
	if _, err := p.facade.UpdatePolicy(ctx, "root", 2, &version); !errors.Is(err, domainErrors.ErrVersionConflict) {
		t.Fatalf("expected stale version to conflict, got %v", err)
	}

	days := 5
	if _, err := p.facade.SubmitReturn(ctx, "bob", model.SubmitReturn{
		ProductName: "Lamp",
		Condition:   "Poor",
		DaysUsed:    &days,
		PickupDate:  "2024-05-03",
		PickupTime:  "09:00",
	}); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	summary, err := p.facade.ActionSummary(ctx)
	if err != nil {
		t.Fatalf("summary returned error: %v", err)
	}
	if len(summary) != len(model.Actions) || summary[0].Action != model.ActionRRR || summary[0].Count != 1 || summary[0].Credit != 30 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
