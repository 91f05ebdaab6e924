package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/scoring"
	testhelpers "github.com/polkiloo/returnearn/internal/test"
)

type returnHarness struct {
	uc       *ReturnUseCase
	returns  *testhelpers.ReturnRepositoryStub
	policy   *PolicyUseCase
	policies *testhelpers.PolicyRepositoryStub
	scorer   *testhelpers.ScorerStub
	recorder *testhelpers.RecorderStub
}

func newReturnHarness(score float64) *returnHarness {
	h := &returnHarness{
		returns:  &testhelpers.ReturnRepositoryStub{},
		policies: &testhelpers.PolicyRepositoryStub{},
		scorer:   &testhelpers.ScorerStub{Value: score, Version: "rf-test"},
		recorder: &testhelpers.RecorderStub{},
	}
	h.policy = testPolicyUseCase(h.policies, h.recorder)
	h.uc = NewReturnUseCase(ReturnDeps{
		Returns:         h.returns,
		Scorer:          h.scorer,
		Policies:        h.policy,
		Recorder:        h.recorder,
		Logger:          discardLogger(),
		LeaderboardSize: 3,
	})

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.uc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	seq := 0
	h.uc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return h
}

func intPtr(v int) *int { return &v }

func validSubmission() model.SubmitReturn {
	return model.SubmitReturn{
		ProductName: "Kettle",
		Condition:   "Good",
		DaysUsed:    intPtr(80),
		PickupDate:  "2024-05-03",
		PickupTime:  "10:30",
	}
}

func TestReturnUseCaseSubmitPricesAndAppends(t *testing.T) {
	h := newReturnHarness(70)

	record, err := h.uc.Submit(context.Background(), "alice", validSubmission())
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	if record.Credit != 35 || record.Action != model.ActionResell {
		t.Fatalf("expected 35 credit and Resell, got %d %s", record.Credit, record.Action)
	}
	if record.ID != "id-1" || record.Username != "alice" || record.Condition != model.ConditionGood {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.PolicyVersion != 0 || record.ModelVersion != "rf-test" || record.Score != 70 {
		t.Fatalf("unexpected provenance %+v", record)
	}
	if record.SubmittedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", record.SubmittedAt)
	}
	if len(h.returns.Records) != 1 || h.returns.Records[0] != *record {
		t.Fatalf("expected exactly the returned record in the ledger, got %+v", h.returns.Records)
	}
	if h.recorder.Submitted[model.ActionResell] != 1 || h.recorder.Credit != 35 {
		t.Fatalf("unexpected metrics %+v", h.recorder)
	}
}

func TestReturnUseCaseSubmitNormalizesInput(t *testing.T) {
	h := newReturnHarness(10)
	var gotCondition model.Condition
	var gotDays int
	h.scorer.ScoreFn = func(_ context.Context, c model.Condition, d int) (model.Score, error) {
		gotCondition, gotDays = c, d
		return model.Score{Value: 10}, nil
	}

	in := validSubmission()
	in.ProductName = "  Kettle  "
	in.Condition = "poor"
	in.DaysUsed = intPtr(0)
	record, err := h.uc.Submit(context.Background(), "alice", in)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if gotCondition != model.ConditionPoor || gotDays != 0 {
		t.Fatalf("scorer received %q %d", gotCondition, gotDays)
	}
	if record.ProductName != "Kettle" || record.Condition != model.ConditionPoor || record.Action != model.ActionRRR {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Credit != 5 {
		t.Fatalf("expected 5 credit, got %d", record.Credit)
	}
}

func TestReturnUseCaseSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.SubmitReturn)
		field  string
	}{
		{"empty product", func(s *model.SubmitReturn) { s.ProductName = "  " }, "product name"},
		{"unknown condition", func(s *model.SubmitReturn) { s.Condition = "Broken" }, "condition"},
		{"missing days", func(s *model.SubmitReturn) { s.DaysUsed = nil }, "days used"},
		{"negative days", func(s *model.SubmitReturn) { s.DaysUsed = intPtr(-1) }, "days used"},
		{"missing date", func(s *model.SubmitReturn) { s.PickupDate = "" }, "pickup date"},
		{"bad date", func(s *model.SubmitReturn) { s.PickupDate = "2024-02-30" }, "pickup date"},
		{"unpadded date", func(s *model.SubmitReturn) { s.PickupDate = "2024-5-3" }, "pickup date"},
		{"missing time", func(s *model.SubmitReturn) { s.PickupTime = "" }, "pickup time"},
		{"twelve hour time", func(s *model.SubmitReturn) { s.PickupTime = "10:30 PM" }, "pickup time"},
		{"unpadded time", func(s *model.SubmitReturn) { s.PickupTime = "9:30" }, "pickup time"},
		{"out of range time", func(s *model.SubmitReturn) { s.PickupTime = "24:00" }, "pickup time"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newReturnHarness(50)
			in := validSubmission()
			tc.mutate(&in)

			_, err := h.uc.Submit(context.Background(), "alice", in)
			if !errors.Is(err, domainErrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to name %q, got %v", tc.field, err)
			}
			if h.scorer.Calls != 0 || len(h.returns.Records) != 0 {
				t.Fatalf("expected no scoring and no append, got %d calls %d records", h.scorer.Calls, len(h.returns.Records))
			}
			if h.recorder.Failures[FailureInvalidInput] != 1 {
				t.Fatalf("expected invalid input failure to be recorded, got %v", h.recorder.Failures)
			}
		})
	}
}

func TestReturnUseCaseSubmitScoringFailure(t *testing.T) {
	h := newReturnHarness(0)
	h.scorer.Err = scoring.ErrUnknownCondition

	_, err := h.uc.Submit(context.Background(), "alice", validSubmission())
	if !errors.Is(err, domainErrors.ErrScoring) || !errors.Is(err, scoring.ErrUnknownCondition) {
		t.Fatalf("expected scoring error wrapping the cause, got %v", err)
	}
	if !strings.Contains(err.Error(), scoring.ErrUnknownCondition.Error()) {
		t.Fatalf("expected raw scorer message in %q", err)
	}
	if len(h.returns.Records) != 0 {
		t.Fatalf("expected nothing appended, got %d", len(h.returns.Records))
	}
	if h.recorder.Failures[FailureScoring] != 1 {
		t.Fatalf("expected scoring failure to be recorded, got %v", h.recorder.Failures)
	}
}

func TestReturnUseCaseSubmitStorageFailure(t *testing.T) {
	h := newReturnHarness(50)
	h.returns.AppendFn = func(context.Context, model.ReturnRecord) error {
		return errors.New("disk full")
	}

	_, err := h.uc.Submit(context.Background(), "alice", validSubmission())
	if !errors.Is(err, domainErrors.ErrStorage) || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected storage error keeping the cause, got %v", err)
	}
	if len(h.returns.Records) != 0 {
		t.Fatalf("expected nothing appended, got %d", len(h.returns.Records))
	}
	if h.recorder.Failures[FailureStorage] != 1 {
		t.Fatalf("expected storage failure to be recorded, got %v", h.recorder.Failures)
	}
}

func TestReturnUseCaseSubmitPolicyFailure(t *testing.T) {
	h := newReturnHarness(50)
	h.policies.Err = fmt.Errorf("%w: unreadable", domainErrors.ErrStorage)

	if _, err := h.uc.Submit(context.Background(), "alice", validSubmission()); !errors.Is(err, domainErrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if h.scorer.Calls != 0 {
		t.Fatal("expected scorer not to be called")
	}
	if h.recorder.Failures[FailurePolicy] != 1 {
		t.Fatalf("expected policy failure to be recorded, got %v", h.recorder.Failures)
	}
}

func TestReturnUseCaseMultiplierChangeKeepsStoredCredit(t *testing.T) {
	h := newReturnHarness(70)
	ctx := context.Background()

	before, err := h.uc.Submit(ctx, "alice", validSubmission())
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if _, err := h.policy.Update(ctx, "root", 2, nil); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	after, err := h.uc.Submit(ctx, "alice", validSubmission())
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	if after.Credit != 140 || after.PolicyVersion != 1 {
		t.Fatalf("expected new policy to price later submission, got %+v", after)
	}

	history, err := h.uc.History(ctx, "alice")
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two records, got %d", len(history))
	}
	if history[1].ID != before.ID || history[1].Credit != 35 || history[1].PolicyVersion != 0 {
		t.Fatalf("stored credit changed after policy update: %+v", history[1])
	}
}

func TestReturnUseCaseHistoryAndProfile(t *testing.T) {
	h := newReturnHarness(70)
	ctx := context.Background()

	profile, err := h.uc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile returned error: %v", err)
	}
	if profile.Returns != 0 || profile.TotalCredit != 0 || profile.LastReturnAt != nil {
		t.Fatalf("expected empty profile, got %+v", profile)
	}

	for i := 0; i < 2; i++ {
		if _, err := h.uc.Submit(ctx, "alice", validSubmission()); err != nil {
			t.Fatalf("submit returned error: %v", err)
		}
	}
	if _, err := h.uc.Submit(ctx, "bob", validSubmission()); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	history, err := h.uc.History(ctx, "alice")
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if len(history) != 2 || history[0].ID != "id-2" || history[1].ID != "id-1" {
		t.Fatalf("expected alice's records newest first, got %+v", history)
	}

	profile, err = h.uc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile returned error: %v", err)
	}
	if profile.Returns != 2 || profile.TotalCredit != 70 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.LastReturnAt == nil || !profile.LastReturnAt.Equal(history[0].SubmittedAt) {
		t.Fatalf("expected last return at %v, got %v", history[0].SubmittedAt, profile.LastReturnAt)
	}

	h.returns.Err = domainErrors.ErrStorage
	if _, err := h.uc.Profile(ctx, "alice"); !errors.Is(err, domainErrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestReturnUseCaseProfileSaturatesTotal(t *testing.T) {
	h := newReturnHarness(0)
	h.returns.Records = []model.ReturnRecord{
		{ID: "a", Username: "alice", Credit: math.MaxInt64, Action: model.ActionResell},
		{ID: "b", Username: "alice", Credit: math.MaxInt64, Action: model.ActionResell},
	}

	profile, err := h.uc.Profile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("profile returned error: %v", err)
	}
	if profile.Returns != 2 || profile.TotalCredit != math.MaxInt64 {
		t.Fatalf("expected saturated total, got %+v", profile)
	}
}

func TestReturnUseCaseLeaderboard(t *testing.T) {
	h := newReturnHarness(0)
	h.returns.Records = []model.ReturnRecord{
		{Username: "dave", Credit: 10},
		{Username: "carol", Credit: 50},
		{Username: "bob", Credit: 50},
		{Username: "alice", Credit: 20},
		{Username: "erin", Credit: 5},
		{Username: "alice", Credit: 30},
	}

	board, err := h.uc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard returned error: %v", err)
	}

	want := []model.LeaderboardEntry{
		{Username: "alice", TotalCredit: 50, Returns: 2},
		{Username: "bob", TotalCredit: 50, Returns: 1},
		{Username: "carol", TotalCredit: 50, Returns: 1},
	}
	if len(board) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), board)
	}
	for i := range want {
		if board[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], board[i])
		}
	}

	empty := newReturnHarness(0)
	board, err = empty.uc.Leaderboard(context.Background())
	if err != nil || len(board) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v %v", board, err)
	}
}

func TestReturnUseCaseLedgerAndSummary(t *testing.T) {
	h := newReturnHarness(0)
	h.returns.Records = []model.ReturnRecord{
		{ID: "1", Username: "alice", Action: model.ActionRRR, Credit: 5},
		{ID: "2", Username: "bob", Action: model.ActionResell, Credit: 40},
		{ID: "3", Username: "alice", Action: model.ActionResell, Credit: 35},
	}
	ctx := context.Background()

	all, err := h.uc.Ledger(ctx, "")
	if err != nil || len(all) != 3 || all[0].ID != "3" {
		t.Fatalf("expected full ledger newest first, got %+v %v", all, err)
	}

	alice, err := h.uc.Ledger(ctx, " alice ")
	if err != nil || len(alice) != 2 {
		t.Fatalf("expected alice's two records, got %+v %v", alice, err)
	}

	summary, err := h.uc.ActionSummary(ctx)
	if err != nil {
		t.Fatalf("summary returned error: %v", err)
	}
	want := []model.ActionSummary{
		{Action: model.ActionRRR, Count: 1, Credit: 5},
		{Action: model.ActionRepair},
		{Action: model.ActionResell, Count: 2, Credit: 75},
	}
	if len(summary) != len(want) {
		t.Fatalf("expected every action listed, got %+v", summary)
	}
	for i := range want {
		if summary[i] != want[i] {
			t.Fatalf("summary %d: expected %+v, got %+v", i, want[i], summary[i])
		}
	}
}
