// Package session models storefront accounts and their browser sessions.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists users.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// SessionRepository persists sessions.
type SessionRepository interface {
	FindByToken(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Cache keeps resolved sessions close to the request path.
type Cache interface {
	Get(ctx context.Context, token string) (*Current, error)
	Set(ctx context.Context, cur *Current, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}
