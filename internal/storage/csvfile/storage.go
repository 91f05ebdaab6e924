// Package csvfile keeps the portal state in flat CSV files inside a data directory.
package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	"github.com/polkiloo/returnearn/internal/pkg/ledgercsv"
	"github.com/polkiloo/returnearn/internal/worker"
)

const (
	credentialsFile = "credentials.csv"
	adminsFile      = "admins.csv"
	returnsFile     = "returns.csv"
	policyFile      = "policy.csv"
)

var (
	credentialHeader = []string{"username", "password_hash"}
	policyHeader     = []string{"version", "multiplier", "updated_by", "updated_at"}
)

// Storage acts as repository facade backed by CSV files.
type Storage struct {
	dir    string
	logger *slog.Logger
	writer *worker.Serializer

	users    table
	admins   table
	returns  table
	policies table
}

type userRepository struct {
	storage *Storage
}

type adminRepository struct {
	storage *Storage
}

type returnRepository struct {
	storage *Storage
}

type policyRepository struct {
	storage *Storage
}

// New opens the data directory, validates existing files and starts the writer.
func New(dir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Storage{
		dir:      dir,
		logger:   logger,
		users:    table{path: filepath.Join(dir, credentialsFile), header: credentialHeader},
		admins:   table{path: filepath.Join(dir, adminsFile), header: credentialHeader},
		returns:  table{path: filepath.Join(dir, returnsFile), header: ledgercsv.Header, matches: ledgercsv.MatchesHeader},
		policies: table{path: filepath.Join(dir, policyFile), header: policyHeader},
	}

	for _, t := range []table{s.users, s.admins, s.returns, s.policies} {
		if err := t.check(); err != nil {
			return nil, err
		}
	}

	s.writer = worker.NewSerializer("csv", logger)
	s.writer.Start(context.Background())

	logger.Info("csv storage opened", slog.String("dir", dir))
	return s, nil
}

// Close drains the writer. Writes submitted afterwards fail.
func (s *Storage) Close() error {
	if s.writer != nil {
		s.writer.Stop()
	}
	return nil
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Admins() repository.AdminRepository {
	return &adminRepository{storage: s}
}

func (s *Storage) Returns() repository.ReturnRepository {
	return &returnRepository{storage: s}
}

func (s *Storage) Policies() repository.PolicyRepository {
	return &policyRepository{storage: s}
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) read(fn func() error) error {
	return s.writer.Read(fn)
}

// --- credential tables ---

type credential struct {
	id    int64
	login string
	hash  string
}

func findCredential(t table, login string) (*credential, error) {
	rows, err := t.rows()
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if row[0] == login {
			return &credential{id: int64(i + 1), login: row[0], hash: row[1]}, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *Storage) createCredential(ctx context.Context, t table, login, passwordHash string) (*credential, error) {
	var created *credential
	err := s.writer.Do(ctx, func() error {
		rows, err := t.rows()
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row[0] == login {
				return domainErrors.ErrAlreadyExists
			}
		}
		if err := t.append([]string{login, passwordHash}); err != nil {
			return err
		}
		created = &credential{id: int64(len(rows) + 1), login: login, hash: passwordHash}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Storage) getCredential(t table, login string) (*credential, error) {
	var found *credential
	err := s.read(func() error {
		var err error
		found, err = findCredential(t, login)
		return err
	})
	return found, err
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	c, err := r.storage.createCredential(ctx, r.storage.users, login, passwordHash)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: c.id, Login: c.login, PasswordHash: c.hash}, nil
}

func (r *userRepository) GetByLogin(_ context.Context, login string) (*model.User, error) {
	c, err := r.storage.getCredential(r.storage.users, login)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: c.id, Login: c.login, PasswordHash: c.hash}, nil
}

// --- AdminRepository implementation ---

func (r *adminRepository) Create(ctx context.Context, login, passwordHash string) (*model.Admin, error) {
	c, err := r.storage.createCredential(ctx, r.storage.admins, login, passwordHash)
	if err != nil {
		return nil, err
	}
	return &model.Admin{ID: c.id, Login: c.login, PasswordHash: c.hash}, nil
}

func (r *adminRepository) GetByLogin(_ context.Context, login string) (*model.Admin, error) {
	c, err := r.storage.getCredential(r.storage.admins, login)
	if err != nil {
		return nil, err
	}
	return &model.Admin{ID: c.id, Login: c.login, PasswordHash: c.hash}, nil
}

// --- ReturnRepository implementation ---

func (r *returnRepository) Append(ctx context.Context, record model.ReturnRecord) error {
	err := r.storage.writer.Do(ctx, func() error {
		return r.storage.returns.append(ledgercsv.Encode(record))
	})
	if err != nil {
		return fmt.Errorf("%w: append %s: %w", domainErrors.ErrStorage, returnsFile, err)
	}
	return nil
}

func (r *returnRepository) load(keep func(model.ReturnRecord) bool) ([]model.ReturnRecord, error) {
	var result []model.ReturnRecord
	err := r.storage.read(func() error {
		rows, err := r.storage.returns.rows()
		if err != nil {
			return err
		}
		for i, row := range rows {
			record, err := ledgercsv.Decode(row)
			if err != nil {
				return fmt.Errorf("%s line %d: %w", returnsFile, i+2, err)
			}
			if keep(record) {
				result = append(result, record)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(result)
	return result, nil
}

func (r *returnRepository) ListByUser(_ context.Context, username string) ([]model.ReturnRecord, error) {
	return r.load(func(rec model.ReturnRecord) bool { return rec.Username == username })
}

func (r *returnRepository) ListAll(_ context.Context) ([]model.ReturnRecord, error) {
	return r.load(func(model.ReturnRecord) bool { return true })
}

func (r *returnRepository) TotalsByUser(ctx context.Context) ([]model.LeaderboardEntry, error) {
	records, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var totals []model.LeaderboardEntry
	for _, rec := range records {
		i, ok := index[rec.Username]
		if !ok {
			i = len(totals)
			index[rec.Username] = i
			totals = append(totals, model.LeaderboardEntry{Username: rec.Username})
		}
		totals[i].TotalCredit = model.AddCredit(totals[i].TotalCredit, rec.Credit)
		totals[i].Returns++
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Username < totals[j].Username })
	return totals, nil
}

// newestFirst orders records by submission time descending; file order is
// insertion order so reversing first keeps later rows ahead on ties.
func newestFirst(records []model.ReturnRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
}

// --- PolicyRepository implementation ---

func decodePolicy(row []string) (model.RewardPolicy, error) {
	version, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.RewardPolicy{}, fmt.Errorf("parse version: %w", err)
	}
	multiplier, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return model.RewardPolicy{}, fmt.Errorf("parse multiplier: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row[3])
	if err != nil {
		return model.RewardPolicy{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return model.RewardPolicy{Version: version, Multiplier: multiplier, UpdatedBy: row[2], UpdatedAt: updatedAt.UTC()}, nil
}

func (r *policyRepository) all() ([]model.RewardPolicy, error) {
	rows, err := r.storage.policies.rows()
	if err != nil {
		return nil, err
	}
	policies := make([]model.RewardPolicy, 0, len(rows))
	for i, row := range rows {
		p, err := decodePolicy(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", policyFile, i+2, err)
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func (r *policyRepository) Current(_ context.Context) (*model.RewardPolicy, error) {
	var current *model.RewardPolicy
	err := r.storage.read(func() error {
		policies, err := r.all()
		if err != nil {
			return err
		}
		for i := range policies {
			if current == nil || policies[i].Version > current.Version {
				current = &policies[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domainErrors.ErrNotFound
	}
	return current, nil
}

func (r *policyRepository) Save(ctx context.Context, policy model.RewardPolicy) error {
	return r.storage.writer.Do(ctx, func() error {
		policies, err := r.all()
		if err != nil {
			return err
		}
		for _, p := range policies {
			if p.Version == policy.Version {
				return domainErrors.ErrVersionConflict
			}
		}
		return r.storage.policies.append([]string{
			strconv.FormatInt(policy.Version, 10),
			strconv.FormatFloat(policy.Multiplier, 'f', -1, 64),
			policy.UpdatedBy,
			policy.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	})
}
