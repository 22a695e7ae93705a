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

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token     string    `gorm:"uniqueIndex;not null;size:64"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	IPAddress string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SessionModel) TableName() string {
	return "sessions"
}

// GormSessionRepository is the GORM-based implementation of session.SessionRepository.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByToken retrieves a session by its token.
func (r *GormSessionRepository) FindByToken(ctx context.Context, token string) (*session.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Session", "token")
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session.ReconstructSession(model.ID, model.Token, model.UserID, model.ExpiresAt,
		model.IPAddress, model.UserAgent, model.CreatedAt, model.UpdatedAt), nil
}

// Save persists a new session.
func (r *GormSessionRepository) Save(ctx context.Context, s *session.Session) error {
	model := &SessionModel{
		ID:        s.ID(),
		Token:     s.Token(),
		UserID:    s.UserID(),
		ExpiresAt: s.ExpiresAt(),
		IPAddress: s.IPAddress(),
		UserAgent: s.UserAgent(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteByToken removes a session. Deleting a missing session is not an error.
func (r *GormSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&SessionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired at or before before.
func (r *GormSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&SessionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
