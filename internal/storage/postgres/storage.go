package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
)

const uniqueViolation = "23505"

// pgxPool is the subset of *pgxpool.Pool used by the storage.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
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

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
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

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS admins (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS returns (
            seq BIGSERIAL PRIMARY KEY,
            id UUID UNIQUE NOT NULL,
            username TEXT NOT NULL,
            product_name TEXT NOT NULL,
            condition TEXT NOT NULL,
            days_used INTEGER NOT NULL CHECK (days_used >= 0),
            score DOUBLE PRECISION NOT NULL,
            credit BIGINT NOT NULL CHECK (credit >= 0),
            action TEXT NOT NULL,
            submitted_at TIMESTAMPTZ NOT NULL,
            pickup_date TEXT NOT NULL,
            pickup_time TEXT NOT NULL,
            policy_version BIGINT NOT NULL,
            model_version TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS reward_policies (
            version BIGINT PRIMARY KEY,
            multiplier DOUBLE PRECISION NOT NULL CHECK (multiplier >= 0),
            updated_by TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_returns_user ON returns(username, submitted_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- AdminRepository implementation ---

func (r *adminRepository) Create(ctx context.Context, login, passwordHash string) (*model.Admin, error) {
	const query = `INSERT INTO admins (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var a model.Admin
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	a.Login = login
	a.PasswordHash = passwordHash
	return &a, nil
}

func (r *adminRepository) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	const query = `SELECT id, login, password_hash, created_at FROM admins WHERE login=$1`
	var a model.Admin
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// --- ReturnRepository implementation ---

const returnColumns = `id, username, product_name, condition, days_used, score, credit, action,
                   submitted_at, pickup_date, pickup_time, policy_version, model_version`

func (r *returnRepository) Append(ctx context.Context, rec model.ReturnRecord) error {
	const query = `INSERT INTO returns (` + returnColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.storage.pool.Exec(ctx, query,
		rec.ID, rec.Username, rec.ProductName, string(rec.Condition), rec.DaysUsed, rec.Score, rec.Credit,
		string(rec.Action), rec.SubmittedAt, rec.PickupDate, rec.PickupTime, rec.PolicyVersion, rec.ModelVersion)
	if err != nil {
		return fmt.Errorf("%w: insert return: %w", domainErrors.ErrStorage, err)
	}
	return nil
}

func (r *returnRepository) list(ctx context.Context, query string, args ...any) ([]model.ReturnRecord, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
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
		)
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.ProductName, &condition, &rec.DaysUsed, &rec.Score, &rec.Credit,
			&action, &rec.SubmittedAt, &rec.PickupDate, &rec.PickupTime, &rec.PolicyVersion, &rec.ModelVersion); err != nil {
			return nil, err
		}
		rec.Condition = model.Condition(condition)
		rec.Action = model.Action(action)
		rec.SubmittedAt = rec.SubmittedAt.UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *returnRepository) ListByUser(ctx context.Context, username string) ([]model.ReturnRecord, error) {
	const query = `SELECT id::text, username, product_name, condition, days_used, score, credit, action,
                   submitted_at, pickup_date, pickup_time, policy_version, model_version
                   FROM returns WHERE username=$1 ORDER BY submitted_at DESC, seq DESC`
	return r.list(ctx, query, username)
}

func (r *returnRepository) ListAll(ctx context.Context) ([]model.ReturnRecord, error) {
	const query = `SELECT id::text, username, product_name, condition, days_used, score, credit, action,
                   submitted_at, pickup_date, pickup_time, policy_version, model_version
                   FROM returns ORDER BY submitted_at DESC, seq DESC`
	return r.list(ctx, query)
}

func (r *returnRepository) TotalsByUser(ctx context.Context) ([]model.LeaderboardEntry, error) {
	const query = `SELECT username, COALESCE(SUM(credit), 0)::BIGINT, COUNT(*)
                   FROM returns GROUP BY username ORDER BY username`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LeaderboardEntry
	for rows.Next() {
		var (
			e     model.LeaderboardEntry
			count int64
		)
		if err := rows.Scan(&e.Username, &e.TotalCredit, &count); err != nil {
			return nil, err
		}
		e.Returns = int(count)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- PolicyRepository implementation ---

func (r *policyRepository) Current(ctx context.Context) (*model.RewardPolicy, error) {
	const query = `SELECT version, multiplier, updated_by, updated_at
                   FROM reward_policies ORDER BY version DESC LIMIT 1`
	var p model.RewardPolicy
	err := r.storage.pool.QueryRow(ctx, query).Scan(&p.Version, &p.Multiplier, &p.UpdatedBy, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *policyRepository) Save(ctx context.Context, p model.RewardPolicy) error {
	const query = `INSERT INTO reward_policies (version, multiplier, updated_by, updated_at) VALUES ($1, $2, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, p.Version, p.Multiplier, p.UpdatedBy, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrVersionConflict
		}
		return err
	}
	return nil
}
