package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated browser session identified by an opaque token.
type Session struct {
	id        uuid.UUID
	token     string
	userID    uuid.UUID
	expiresAt time.Time
	ipAddress string
	userAgent string
	createdAt time.Time
	updatedAt time.Time
}

// NewSession opens a session for userID that lasts ttl.
func NewSession(userID uuid.UUID, ttl time.Duration, ipAddress, userAgent string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		id:        uuid.New(),
		token:     token,
		userID:    userID,
		expiresAt: now.Add(ttl),
		ipAddress: ipAddress,
		userAgent: userAgent,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSession rebuilds a Session from persistence.
func ReconstructSession(id uuid.UUID, token string, userID uuid.UUID, expiresAt time.Time, ipAddress, userAgent string, createdAt, updatedAt time.Time) *Session {
	return &Session{
		id:        id,
		token:     token,
		userID:    userID,
		expiresAt: expiresAt,
		ipAddress: ipAddress,
		userAgent: userAgent,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// IsExpired reports whether the session is no longer usable at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) Token() string        { return s.token }
func (s *Session) UserID() uuid.UUID    { return s.userID }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }
func (s *Session) IPAddress() string    { return s.ipAddress }
func (s *Session) UserAgent() string    { return s.userAgent }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
