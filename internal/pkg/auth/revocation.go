package auth

import (
	"sync"
	"time"
)

// Revocations tracks logged-out sessions until their tokens would expire anyway.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevocations creates an empty revocation set.
func NewRevocations() *Revocations {
	return &Revocations{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marks session id as logged out.
func (r *Revocations) Revoke(id string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for sid, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, sid)
		}
	}
	if expiresAt.After(now) {
		r.revoked[id] = expiresAt
	}
}

// IsRevoked reports whether session id was logged out.
func (r *Revocations) IsRevoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok
}

// Len returns the number of tracked sessions.
func (r *Revocations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.revoked)
}
