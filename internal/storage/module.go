// Package storage selects the configured persistence driver and exposes its repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	"github.com/polkiloo/returnearn/internal/storage/csvfile"
	"github.com/polkiloo/returnearn/internal/storage/postgres"
	"github.com/polkiloo/returnearn/internal/storage/sqlite"
)

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "returnearn.db"

// Module wires the storage driver and repository adapters.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.AdminRepository { return f.Admins() },
		func(f repository.Factory) repository.ReturnRepository { return f.Returns() },
		func(f repository.Factory) repository.PolicyRepository { return f.Policies() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// Open constructs the repository factory for cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Factory, error) {
	switch cfg.StorageDriver {
	case config.DriverCSV:
		st, err := csvfile.New(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverSQLite:
		st, err := sqlite.New(ctx, filepath.Join(cfg.DataDir, SQLiteFile), logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, cfg.DatabaseURI, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newFactory(p factoryParams) (repository.Factory, error) {
	return Open(p.Ctx, p.Config, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := factory.Close(); err != nil {
				logger.Error("close storage failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
