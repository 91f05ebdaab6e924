package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/domain/repository"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// AuthUseCase handles customer registration and login.
type AuthUseCase struct {
	users    repository.UserRepository
	hasher   pkgAuth.PasswordHasher
	sessions *SessionUseCase
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, sessions *SessionUseCase) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, sessions: sessions}
}

// Register creates a new customer and returns a user session token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	login, err := ValidateLogin(login)
	if err != nil {
		return nil, "", err
	}
	hash, err := hashPassword(u.hasher, password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.sessions.Issue(usr.Login, model.RoleUser)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate verifies credentials and returns a user session token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", fmt.Errorf("%w: login and password are required", domainErrors.ErrInvalidInput)
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.sessions.Issue(usr.Login, model.RoleUser)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

func hashPassword(hasher pkgAuth.PasswordHasher, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", domainErrors.ErrInvalidInput)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", domainErrors.ErrInvalidInput, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
