package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"not null;size:120"`
	Email         string    `gorm:"uniqueIndex;not null;size:254"`
	EmailVerified bool      `gorm:"not null;default:false"`
	PasswordHash  string    `gorm:"not null;size:100"`
	Role          string    `gorm:"not null;size:20;default:'customer'"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of session.UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by id.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByEmail retrieves a user by normalized email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*session.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", session.NormalizeEmail(email)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return toDomainUser(&model), nil
}

// Save persists a new user.
func (r *GormUserRepository) Save(ctx context.Context, u *session.User) error {
	model := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("An account with this email already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Update writes a user's mutable fields.
func (r *GormUserRepository) Update(ctx context.Context, u *session.User) error {
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]interface{}{
			"name":           u.Name(),
			"email_verified": u.EmailVerified(),
			"role":           string(u.Role()),
			"updated_at":     u.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("User", u.ID().String())
	}
	return nil
}

func toUserModel(u *session.User) *UserModel {
	return &UserModel{
		ID:            u.ID(),
		Name:          u.Name(),
		Email:         u.Email(),
		EmailVerified: u.EmailVerified(),
		PasswordHash:  u.PasswordHash(),
		Role:          string(u.Role()),
		CreatedAt:     u.CreatedAt(),
		UpdatedAt:     u.UpdatedAt(),
	}
}

func toDomainUser(m *UserModel) *session.User {
	return session.ReconstructUser(m.ID, m.Name, m.Email, m.EmailVerified, m.PasswordHash,
		session.Role(m.Role), m.CreatedAt, m.UpdatedAt)
}
