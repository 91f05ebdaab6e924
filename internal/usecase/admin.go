package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// AdminUseCase manages retailer operator accounts.
type AdminUseCase struct {
	admins   repository.AdminRepository
	hasher   pkgAuth.PasswordHasher
	sessions *SessionUseCase
	logger   *slog.Logger
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(admins repository.AdminRepository, hasher pkgAuth.PasswordHasher, sessions *SessionUseCase, logger *slog.Logger) *AdminUseCase {
	return &AdminUseCase{admins: admins, hasher: hasher, sessions: sessions, logger: logger}
}

// Authenticate verifies admin credentials and returns an admin session token.
func (u *AdminUseCase) Authenticate(ctx context.Context, login, password string) (*model.Admin, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	admin, err := u.admins.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("admin login rejected", slog.String("login", login))
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(admin.PasswordHash, password); err != nil {
		u.logger.Warn("admin login rejected", slog.String("login", login))
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.sessions.Issue(admin.Login, model.RoleAdmin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// Create adds a new admin account.
func (u *AdminUseCase) Create(ctx context.Context, login, password string) (*model.Admin, error) {
	login, err := ValidateLogin(login)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(u.hasher, password)
	if err != nil {
		return nil, err
	}

	admin, err := u.admins.Create(ctx, login, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.logger.Info("admin created", slog.String("login", admin.Login))
	return admin, nil
}

// Ensure creates the admin unless it already exists. An empty login is a no-op.
// It reports whether a new account was created.
func (u *AdminUseCase) Ensure(ctx context.Context, login, password string) (bool, error) {
	if strings.TrimSpace(login) == "" {
		return false, nil
	}

	_, err := u.admins.GetByLogin(ctx, strings.TrimSpace(login))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	if _, err := u.Create(ctx, login, password); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
