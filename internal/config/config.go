package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// Storage drivers supported by the ledger.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	StorageDriver         string
	DataDir               string
	DatabaseURI           string
	ModelPath             string
	ScoringServiceAddress string
	JWTSecret             string
	TokenTTL              time.Duration
	DefaultMultiplier     float64
	LeaderboardSize       int
	AdminLogin            string
	AdminPassword         string
	LogLevel              slog.Level
	ShutdownTimeout       time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultDataDir         = "data"
	defaultModelPath       = "model/scoring.toml"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenTTL        = 24 * time.Hour
	defaultMultiplier      = 0.5
	defaultLeaderboardSize = 10
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
)

// Load parses configuration from flags and environment variables.
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		StorageDriver:         getString(lookup, "STORAGE_DRIVER", ""),
		DataDir:               getString(lookup, "DATA_DIR", defaultDataDir),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		ModelPath:             getString(lookup, "MODEL_PATH", defaultModelPath),
		ScoringServiceAddress: getString(lookup, "SCORING_SERVICE_ADDRESS", ""),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		DefaultMultiplier:     getFloat(lookup, "DEFAULT_MULTIPLIER", defaultMultiplier),
		LeaderboardSize:       getInt(lookup, "LEADERBOARD_SIZE", defaultLeaderboardSize),
		AdminLogin:            getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:         getString(lookup, "ADMIN_PASSWORD", ""),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("returnearn", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		logLevelStr        = getString(lookup, "LOG_LEVEL", defaultLogLevel)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: csv, sqlite or postgres")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Directory for csv and sqlite data files")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the scoring model artifact")
	fs.StringVar(&cfg.ScoringServiceAddress, "scoring-url", cfg.ScoringServiceAddress, "Remote scoring service base URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Session lifetime")
	fs.Float64Var(&cfg.DefaultMultiplier, "multiplier", cfg.DefaultMultiplier, "Reward multiplier used until an admin saves one")
	fs.IntVar(&cfg.LeaderboardSize, "leaderboard", cfg.LeaderboardSize, "Number of leaderboard entries")
	fs.StringVar(&cfg.AdminLogin, "admin-login", cfg.AdminLogin, "Bootstrap admin login")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Bootstrap admin password")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverCSV
		if cfg.DatabaseURI != "" {
			cfg.StorageDriver = DriverPostgres
		}
	}
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaultLeaderboardSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverCSV, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return errors.New("database URI must be provided for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if math.IsNaN(c.DefaultMultiplier) || math.IsInf(c.DefaultMultiplier, 0) || c.DefaultMultiplier < 0 {
		return fmt.Errorf("default multiplier must be a non-negative number, got %v", c.DefaultMultiplier)
	}
	if c.DefaultMultiplier > model.MaxMultiplier {
		return fmt.Errorf("default multiplier must not exceed %d, got %v", model.MaxMultiplier, c.DefaultMultiplier)
	}

	if c.ModelPath == "" && c.ScoringServiceAddress == "" {
		return errors.New("model path or scoring service address must be provided")
	}

	if c.AdminLogin != "" && c.AdminPassword == "" {
		return errors.New("admin password must be provided together with admin login")
	}

	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
