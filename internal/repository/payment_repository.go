package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbandrives/storefront/internal/domain/payment"
	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	BookingID     int64      `gorm:"index;not null"`
	VehicleID     int64      `gorm:"not null"`
	AmountCents   int64      `gorm:"not null"`
	Currency      string     `gorm:"not null;size:3"`
	PaymentMethod string     `gorm:"not null;size:30"`
	ProviderRef   string     `gorm:"uniqueIndex;not null;size:255"`
	PaidAt        time.Time  `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of payment.Repository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save records a payment. A repeated provider reference is a ConflictError.
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("payment " + p.ProviderRef() + " already recorded")
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// FindByBookingID retrieves every payment for a booking.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID int64) ([]*payment.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("paid_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking payments: %w", err)
	}
	return toDomainPayments(models), nil
}

// FindByUserID retrieves a user's payments with pagination.
func (r *GormPaymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*payment.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user payments: %w", err)
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("paid_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user payments: %w", err)
	}
	return toDomainPayments(models), total, nil
}

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID(),
		UserID:        p.UserID(),
		BookingID:     p.BookingID(),
		VehicleID:     p.VehicleID(),
		AmountCents:   int64(p.Amount()),
		Currency:      p.Currency(),
		PaymentMethod: p.PaymentMethod(),
		ProviderRef:   p.ProviderRef(),
		PaidAt:        p.PaidAt(),
		CreatedAt:     p.CreatedAt(),
	}
}

func toDomainPayments(models []PaymentModel) []*payment.Payment {
	payments := make([]*payment.Payment, len(models))
	for i := range models {
		m := &models[i]
		payments[i] = payment.ReconstructPayment(m.ID, m.UserID, m.BookingID, m.VehicleID,
			rental.Cents(m.AmountCents), m.Currency, m.PaymentMethod, m.ProviderRef, m.PaidAt, m.CreatedAt)
	}
	return payments
}
