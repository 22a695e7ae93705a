package session

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// Role of a storefront user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// MinPasswordLength is enforced on sign-up.
const MinPasswordLength = 8

// User is an account that can hold sessions.
type User struct {
	id            uuid.UUID
	name          string
	email         string
	emailVerified bool
	passwordHash  string
	role          Role
	createdAt     time.Time
	updatedAt     time.Time
}

// NewUser creates a customer account. passwordHash must already be hashed.
func NewUser(name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		fields["email"] = "a valid email address is required"
	}
	if passwordHash == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidationError(fields)
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         RoleCustomer,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a User from persistence.
func ReconstructUser(id uuid.UUID, name, email string, emailVerified bool, passwordHash string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		id:            id,
		name:          name,
		email:         email,
		emailVerified: emailVerified,
		passwordHash:  passwordHash,
		role:          role,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Promote grants the admin role.
func (u *User) Promote() {
	u.role = RoleAdmin
	u.updatedAt = time.Now().UTC()
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) EmailVerified() bool  { return u.emailVerified }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
