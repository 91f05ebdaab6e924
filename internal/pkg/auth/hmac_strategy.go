package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

var tokenEncoding = base64.RawURLEncoding

// HMACStrategy implements session token creation/verification using HMAC signatures.
// A token is role:subject:session:expires:signature with the subject base64url encoded.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates a signed session token for subject.
func (s *HMACStrategy) IssueToken(subject string, role model.Role) (string, Claims, error) {
	if subject == "" || role == "" {
		return "", Claims{}, fmt.Errorf("issue token: empty subject or role")
	}
	claims := Claims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Role:      role,
		ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second),
	}
	payload := strings.Join([]string{
		string(role),
		tokenEncoding.EncodeToString([]byte(subject)),
		claims.ID,
		strconv.FormatInt(claims.ExpiresAt.Unix(), 10),
	}, ":")
	token := payload + ":" + s.sign(payload)
	return tokenEncoding.EncodeToString([]byte(token)), claims, nil
}

// ParseToken validates token and returns the session claims.
func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 5 {
		return Claims{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:4], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[4])) {
		return Claims{}, ErrInvalidToken
	}

	role := model.Role(parts[0])
	if role != model.RoleUser && role != model.RoleAdmin {
		return Claims{}, ErrInvalidToken
	}

	subject, err := tokenEncoding.DecodeString(parts[1])
	if err != nil || len(subject) == 0 {
		return Claims{}, ErrInvalidToken
	}

	if _, err := uuid.Parse(parts[2]); err != nil {
		return Claims{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	expiresAt := time.Unix(expires, 0)
	if !expiresAt.After(s.now()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{ID: parts[2], Subject: string(subject), Role: role, ExpiresAt: expiresAt}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return tokenEncoding.EncodeToString(mac.Sum(nil))
}
