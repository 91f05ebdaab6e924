package auth

import (
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// Claims identify an authenticated session.
type Claims struct {
	ID        string
	Subject   string
	Role      model.Role
	ExpiresAt time.Time
}

type Strategy interface {
	IssueToken(subject string, role model.Role) (string, Claims, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
