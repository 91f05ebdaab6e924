// Package sqlite stores the portal state in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
)

// timeLayout is fixed width so text ordering matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Storage acts as repository facade backed by SQLite.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
	table   string
}

type returnRepository struct {
	storage *Storage
}

type policyRepository struct {
	storage *Storage
}

// New opens the database file at path and applies migrations.
func New(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite storage opened", slog.String("path", path))
	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s, table: "users"}
}

func (s *Storage) Admins() repository.AdminRepository {
	return &adminRepository{userRepository{storage: s, table: "admins"}}
}

func (s *Storage) Returns() repository.ReturnRepository {
	return &returnRepository{storage: s}
}

func (s *Storage) Policies() repository.PolicyRepository {
	return &policyRepository{storage: s}
}

func isConstraint(err error) bool {
	var sqliteErr *sqlitedrv.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// --- UserRepository implementation ---

type credential struct {
	id        int64
	login     string
	hash      string
	createdAt time.Time
}

func (r *userRepository) create(ctx context.Context, login, passwordHash string) (*credential, error) {
	now := time.Now().UTC()
	res, err := r.storage.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (login, password_hash, created_at) VALUES (?, ?, ?)`,
		login, passwordHash, formatTime(now))
	if err != nil {
		if isConstraint(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &credential{id: id, login: login, hash: passwordHash, createdAt: now}, nil
}

func (r *userRepository) get(ctx context.Context, login string) (*credential, error) {
	var (
		c       credential
		created string
	)
	err := r.storage.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, created_at FROM `+r.table+` WHERE login=?`, login).
		Scan(&c.id, &c.login, &c.hash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if c.createdAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &c, nil
}

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	c, err := r.create(ctx, login, passwordHash)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: c.id, Login: c.login, PasswordHash: c.hash, CreatedAt: c.createdAt}, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	c, err := r.get(ctx, login)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: c.id, Login: c.login, PasswordHash: c.hash, CreatedAt: c.createdAt}, nil
}

// --- AdminRepository implementation ---

type adminRepository struct {
	userRepository
}

func (r *adminRepository) Create(ctx context.Context, login, passwordHash string) (*model.Admin, error) {
	c, err := r.create(ctx, login, passwordHash)
	if err != nil {
		return nil, err
	}
	return &model.Admin{ID: c.id, Login: c.login, PasswordHash: c.hash, CreatedAt: c.createdAt}, nil
}

func (r *adminRepository) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	c, err := r.get(ctx, login)
	if err != nil {
		return nil, err
	}
	return &model.Admin{ID: c.id, Login: c.login, PasswordHash: c.hash, CreatedAt: c.createdAt}, nil
}

// --- ReturnRepository implementation ---

const returnColumns = `id, username, product_name, condition, days_used, score, credit, action,
	submitted_at, pickup_date, pickup_time, policy_version, model_version`

func (r *returnRepository) Append(ctx context.Context, rec model.ReturnRecord) error {
	_, err := r.storage.db.ExecContext(ctx,
		`INSERT INTO returns (`+returnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Username, rec.ProductName, string(rec.Condition), rec.DaysUsed, rec.Score, rec.Credit,
		string(rec.Action), formatTime(rec.SubmittedAt), rec.PickupDate, rec.PickupTime, rec.PolicyVersion, rec.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("%w: insert return: %w", domainErrors.ErrStorage, err)
	}
	return nil
}

func (r *returnRepository) query(ctx context.Context, where string, args ...any) ([]model.ReturnRecord, error) {
	rows, err := r.storage.db.QueryContext(ctx,
		`SELECT `+returnColumns+` FROM returns `+where+` ORDER BY submitted_at DESC, seq DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ReturnRecord
	for rows.Next() {
		var (
			rec       model.ReturnRecord
			condition string
			action    string
			submitted string
		)
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.ProductName, &condition, &rec.DaysUsed, &rec.Score,
			&rec.Credit, &action, &submitted, &rec.PickupDate, &rec.PickupTime, &rec.PolicyVersion, &rec.ModelVersion); err != nil {
			return nil, err
		}
		if rec.SubmittedAt, err = parseTime(submitted); err != nil {
			return nil, fmt.Errorf("parse submitted_at: %w", err)
		}
		rec.Condition = model.Condition(condition)
		rec.Action = model.Action(action)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *returnRepository) ListByUser(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	return r.query(ctx, `WHERE username=?`, username)
}

func (r *returnRepository) ListAll(ctx context.Context) ([]model.ReturnRecord, error) {
	return r.query(ctx, ``)
}

func (r *returnRepository) TotalsByUser(ctx context.Context) ([]model.LeaderboardEntry, error) {
	rows, err := r.storage.db.QueryContext(ctx,
		`SELECT username, SUM(credit), COUNT(*) FROM returns GROUP BY username ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TotalCredit, &e.Returns); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- PolicyRepository implementation ---

func (r *policyRepository) Current(ctx context.Context) (*model.RewardPolicy, error) {
	var (
		p       model.RewardPolicy
		updated string
	)
	err := r.storage.db.QueryRowContext(ctx,
		`SELECT version, multiplier, updated_by, updated_at FROM reward_policies ORDER BY version DESC LIMIT 1`).
		Scan(&p.Version, &p.Multiplier, &p.UpdatedBy, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &p, nil
}

func (r *policyRepository) Save(ctx context.Context, p model.RewardPolicy) error {
	_, err := r.storage.db.ExecContext(ctx,
		`INSERT INTO reward_policies (version, multiplier, updated_by, updated_at) VALUES (?, ?, ?, ?)`,
		p.Version, p.Multiplier, p.UpdatedBy, formatTime(p.UpdatedAt))
	if err != nil && isConstraint(err) {
		return domainErrors.ErrVersionConflict
	}
	return err
}
