package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Current is the read-only view of the caller's session, passed down
// through request contexts.
type Current struct {
	SessionID uuid.UUID `json:"sessionId"`
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Current) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// NewCurrent builds the view for s owned by u.
func NewCurrent(s *Session, u *User) *Current {
	return &Current{
		SessionID: s.ID(),
		Token:     s.Token(),
		UserID:    u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      u.Role(),
		ExpiresAt: s.ExpiresAt(),
	}
}

type currentKey struct{}

// WithCurrent returns a context carrying cur.
func WithCurrent(ctx context.Context, cur *Current) context.Context {
	return context.WithValue(ctx, currentKey{}, cur)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Current, bool) {
	cur, ok := ctx.Value(currentKey{}).(*Current)
	return cur, ok && cur != nil
}
