package test

import (
	"errors"
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens of the form role:subject:session.
type StrategyStub struct {
	IssueFn func(string, model.Role) (string, pkgAuth.Claims, error)
	ParseFn func(string) (pkgAuth.Claims, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(subject string, role model.Role) (string, pkgAuth.Claims, error) {
	if s.IssueFn != nil {
		return s.IssueFn(subject, role)
	}
	claims := pkgAuth.Claims{
		ID:        string(role) + "-" + subject,
		Subject:   subject,
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return string(role) + ":" + subject, claims, nil
}

// ParseToken parses tokens produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	role, subject, ok := cutToken(token)
	if !ok {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return pkgAuth.Claims{
		ID:        string(role) + "-" + subject,
		Subject:   subject,
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

func cutToken(token string) (model.Role, string, bool) {
	for _, role := range []model.Role{model.RoleUser, model.RoleAdmin} {
		prefix := string(role) + ":"
		if len(token) > len(prefix) && token[:len(prefix)] == prefix {
			return role, token[len(prefix):], true
		}
	}
	return "", "", false
}

// TokenParserStub implements the middleware token parsing contract.
type TokenParserStub struct {
	Claims  pkgAuth.Claims
	Err     error
	ParseFn func(string) (pkgAuth.Claims, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return pkgAuth.Claims{}, s.Err
	}
	return s.Claims, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
