package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{Users: make(map[string]*model.User), Next: 1}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// AdminRepositoryStub stores admins in-memory for tests.
type AdminRepositoryStub struct {
	Admins map[string]*model.Admin
	Next   int64
	Err    error
	// GetErr fails lookups only.
	GetErr error
}

// NewAdminRepositoryStub constructs an empty admin repository.
func NewAdminRepositoryStub() *AdminRepositoryStub {
	return &AdminRepositoryStub{Admins: make(map[string]*model.Admin), Next: 1}
}

// Create registers admin unless already exists.
func (s *AdminRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Admins == nil {
		s.Admins = make(map[string]*model.Admin)
	}
	if _, exists := s.Admins[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	admin := &model.Admin{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Admins[login] = admin
	return admin, nil
}

// GetByLogin fetches admin by login or returns not found.
func (s *AdminRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if admin, ok := s.Admins[login]; ok {
		return admin, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ReturnRepositoryStub is an in-memory ledger. Records are kept in append order.
type ReturnRepositoryStub struct {
	mu       sync.Mutex
	Records  []model.ReturnRecord
	AppendFn func(context.Context, model.ReturnRecord) error
	Err      error
}

// Append stores record unless an override or error is configured.
func (s *ReturnRepositoryStub) Append(ctx context.Context, record model.ReturnRecord) error {
	if s.AppendFn != nil {
		if err := s.AppendFn(ctx, record); err != nil {
			return err
		}
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, record)
	return nil
}

// ListByUser returns the user's records newest first.
func (s *ReturnRepositoryStub) ListByUser(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.ReturnRecord
	for _, r := range s.snapshot() {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListAll returns every record newest first.
func (s *ReturnRepositoryStub) ListAll(ctx context.Context) ([]model.ReturnRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.snapshot(), nil
}

// TotalsByUser aggregates credit per user ordered by username.
func (s *ReturnRepositoryStub) TotalsByUser(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	totals := make(map[string]*model.LeaderboardEntry)
	for _, r := range s.snapshot() {
		e, ok := totals[r.Username]
		if !ok {
			e = &model.LeaderboardEntry{Username: r.Username}
			totals[r.Username] = e
		}
		e.TotalCredit = model.AddCredit(e.TotalCredit, r.Credit)
		e.Returns++
	}
	out := make([]model.LeaderboardEntry, 0, len(totals))
	for _, e := range totals {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *ReturnRepositoryStub) snapshot() []model.ReturnRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReturnRecord, 0, len(s.Records))
	for i := len(s.Records) - 1; i >= 0; i-- {
		out = append(out, s.Records[i])
	}
	return out
}

// PolicyRepositoryStub keeps policy versions in memory.
type PolicyRepositoryStub struct {
	Versions []model.RewardPolicy
	SaveFn   func(context.Context, model.RewardPolicy) error
	Err      error
}

// Current returns the highest saved version.
func (s *PolicyRepositoryStub) Current(ctx context.Context) (*model.RewardPolicy, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Versions) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	latest := s.Versions[0]
	for _, p := range s.Versions[1:] {
		if p.Version > latest.Version {
			latest = p
		}
	}
	return &latest, nil
}

// Save appends policy unless its version is taken.
func (s *PolicyRepositoryStub) Save(ctx context.Context, policy model.RewardPolicy) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, policy)
	}
	if s.Err != nil {
		return s.Err
	}
	for _, p := range s.Versions {
		if p.Version == policy.Version {
			return domainErrors.ErrVersionConflict
		}
	}
	s.Versions = append(s.Versions, policy)
	return nil
}

// FactoryStub bundles in-memory repositories.
type FactoryStub struct {
	UsersRepo    *UserRepositoryStub
	AdminsRepo   *AdminRepositoryStub
	ReturnsRepo  *ReturnRepositoryStub
	PoliciesRepo *PolicyRepositoryStub
	Closed       bool
	CloseErr     error
}

// NewFactoryStub creates a factory with empty repositories.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		UsersRepo:    NewUserRepositoryStub(),
		AdminsRepo:   NewAdminRepositoryStub(),
		ReturnsRepo:  &ReturnRepositoryStub{},
		PoliciesRepo: &PolicyRepositoryStub{},
	}
}

func (f *FactoryStub) Users() repository.UserRepository { return f.UsersRepo }
func (f *FactoryStub) Admins() repository.AdminRepository { return f.AdminsRepo }
func (f *FactoryStub) Returns() repository.ReturnRepository { return f.ReturnsRepo }
func (f *FactoryStub) Policies() repository.PolicyRepository { return f.PoliciesRepo }

// Close records the call.
func (f *FactoryStub) Close() error {
	f.Closed = true
	return f.CloseErr
}

var _ repository.Factory = (*FactoryStub)(nil)
