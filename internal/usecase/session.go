package usecase

import (
	"fmt"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// SessionUseCase issues, verifies and revokes session tokens for both roles.
type SessionUseCase struct {
	tokens      pkgAuth.Strategy
	revocations *pkgAuth.Revocations
}

// NewSessionUseCase constructs SessionUseCase.
func NewSessionUseCase(strategy pkgAuth.Strategy, revocations *pkgAuth.Revocations) *SessionUseCase {
	return &SessionUseCase{tokens: strategy, revocations: revocations}
}

// Issue starts a session for subject acting as role.
func (u *SessionUseCase) Issue(subject string, role model.Role) (string, error) {
	token, _, err := u.tokens.IssueToken(subject, role)
	if err != nil {
		return "", fmt.Errorf("issue %s session: %w", role, err)
	}
	return token, nil
}

// ParseToken returns the claims of a live session.
func (u *SessionUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return pkgAuth.Claims{}, err
	}
	if u.revocations.IsRevoked(claims.ID) {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return claims, nil
}

// Logout ends the session described by claims.
func (u *SessionUseCase) Logout(claims pkgAuth.Claims) {
	if claims.ID == "" {
		return
	}
	u.revocations.Revoke(claims.ID, claims.ExpiresAt)
}
