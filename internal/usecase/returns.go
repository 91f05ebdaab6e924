package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	"github.com/polkiloo/returnearn/internal/scoring"
)

// Failure reasons reported to the SubmissionRecorder.
const (
	FailureInvalidInput = "invalid_input"
	FailurePolicy       = "policy"
	FailureScoring      = "scoring"
	FailureStorage      = "storage"
)

// SubmissionRecorder observes the outcome of every submission.
type SubmissionRecorder interface {
	ReturnSubmitted(action model.Action, credit int64)
	SubmissionFailed(reason string)
}

// ReturnDeps lists ReturnUseCase collaborators.
// A nil Recorder disables instrumentation.
type ReturnDeps struct {
	Returns         repository.ReturnRepository
	Scorer          scoring.Scorer
	Policies        *PolicyUseCase
	Recorder        SubmissionRecorder
	Logger          *slog.Logger
	LeaderboardSize int
}

// ReturnUseCase runs the submission pipeline and serves ledger reads.
type ReturnUseCase struct {
	returns         repository.ReturnRepository
	scorer          scoring.Scorer
	policies        *PolicyUseCase
	recorder        SubmissionRecorder
	logger          *slog.Logger
	leaderboardSize int
	now             func() time.Time
	newID           func() string
}

// NewReturnUseCase constructs ReturnUseCase.
func NewReturnUseCase(d ReturnDeps) *ReturnUseCase {
	return &ReturnUseCase{
		returns:         d.Returns,
		scorer:          d.Scorer,
		policies:        d.Policies,
		recorder:        d.Recorder,
		logger:          d.Logger,
		leaderboardSize: d.LeaderboardSize,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// Submit validates, scores and prices a return, then appends it to the ledger.
// Nothing is appended when any step fails.
func (u *ReturnUseCase) Submit(ctx context.Context, username string, in model.SubmitReturn) (*model.ReturnRecord, error) {
	s, err := validateSubmission(in)
	if err != nil {
		u.failed(FailureInvalidInput)
		return nil, err
	}

	policy, err := u.policies.Current(ctx)
	if err != nil {
		u.failed(FailurePolicy)
		return nil, err
	}

	score, err := u.scorer.Score(ctx, s.condition, s.daysUsed)
	if err != nil {
		u.failed(FailureScoring)
		u.logger.Warn("scoring failed",
			slog.String("user", username),
			slog.String("condition", string(s.condition)),
			slog.Int("days_used", s.daysUsed),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrScoring, err)
	}

	reward := Reward(score.Value, policy.Multiplier)
	record := model.ReturnRecord{
		ID:            u.newID(),
		Username:      username,
		ProductName:   s.productName,
		Condition:     s.condition,
		DaysUsed:      s.daysUsed,
		Score:         score.Value,
		Credit:        reward.Credit,
		Action:        reward.Action,
		SubmittedAt:   u.now().UTC(),
		PickupDate:    s.pickupDate,
		PickupTime:    s.pickupTime,
		PolicyVersion: policy.Version,
		ModelVersion:  score.ModelVersion,
	}

	if err := u.returns.Append(ctx, record); err != nil {
		u.failed(FailureStorage)
		if !errors.Is(err, domainErrors.ErrStorage) {
			err = fmt.Errorf("%w: %w", domainErrors.ErrStorage, err)
		}
		return nil, fmt.Errorf("submit return: %w", err)
	}

	if u.recorder != nil {
		u.recorder.ReturnSubmitted(record.Action, record.Credit)
	}
	u.logger.Info("return submitted",
		slog.String("id", record.ID),
		slog.String("user", username),
		slog.Float64("score", record.Score),
		slog.Int64("credit", record.Credit),
		slog.String("action", string(record.Action)),
		slog.Int64("policy_version", record.PolicyVersion),
	)
	return &record, nil
}

func (u *ReturnUseCase) failed(reason string) {
	if u.recorder != nil {
		u.recorder.SubmissionFailed(reason)
	}
}

// History returns the user's returns, newest first.
func (u *ReturnUseCase) History(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	return u.returns.ListByUser(ctx, username)
}

// Profile summarizes the user's credit and activity.
func (u *ReturnUseCase) Profile(ctx context.Context, username string) (*model.Profile, error) {
	records, err := u.returns.ListByUser(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{Login: username, Returns: len(records)}
	for _, r := range records {
		profile.TotalCredit = model.AddCredit(profile.TotalCredit, r.Credit)
	}
	if len(records) > 0 {
		last := records[0].SubmittedAt
		profile.LastReturnAt = &last
	}
	return profile, nil
}

// Leaderboard ranks users by total credit, ties broken by username.
func (u *ReturnUseCase) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := u.returns.TotalsByUser(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalCredit != entries[j].TotalCredit {
			return entries[i].TotalCredit > entries[j].TotalCredit
		}
		return entries[i].Username < entries[j].Username
	})

	if u.leaderboardSize > 0 && len(entries) > u.leaderboardSize {
		entries = entries[:u.leaderboardSize]
	}
	return entries, nil
}

// Ledger returns the full ledger, or one user's slice of it when username is set.
func (u *ReturnUseCase) Ledger(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return u.returns.ListAll(ctx)
	}
	return u.returns.ListByUser(ctx, username)
}

// ActionSummary counts returns and credit per action. Every action is listed.
func (u *ReturnUseCase) ActionSummary(ctx context.Context) ([]model.ActionSummary, error) {
	records, err := u.returns.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := make([]model.ActionSummary, len(model.Actions))
	index := make(map[model.Action]int, len(model.Actions))
	for i, a := range model.Actions {
		summary[i].Action = a
		index[a] = i
	}
	for _, r := range records {
		i, ok := index[r.Action]
		if !ok {
			continue
		}
		summary[i].Count++
		summary[i].Credit = model.AddCredit(summary[i].Credit, r.Credit)
	}
	return summary, nil
}
