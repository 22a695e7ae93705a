package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/contract"
	"github.com/urbandrives/storefront/internal/domain/payment"
	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/kafka"
	"github.com/urbandrives/storefront/internal/platform/metrics"
)

// PaymentDTO is the response representation of a ledger entry.
type PaymentDTO struct {
	ID            uuid.UUID    `json:"id"`
	BookingID     int64        `json:"bookingId"`
	CarID         int64        `json:"carId"`
	Amount        rental.Cents `json:"amount"`
	Currency      string       `json:"currency"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentDate   time.Time    `json:"paymentDate"`
}

// CheckoutDTO points the browser at a hosted checkout page.
type CheckoutDTO struct {
	SessionID string       `json:"sessionId"`
	URL       string       `json:"url"`
	Amount    rental.Cents `json:"amount"`
	Currency  string       `json:"currency"`
}

// PaymentService opens checkouts and keeps the payment ledger.
type PaymentService struct {
	repo      payment.Repository
	gateway   rental.Gateway
	checkout  payment.CheckoutProvider
	publisher EventPublisher
	currency  string
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	repo payment.Repository,
	gateway rental.Gateway,
	checkout payment.CheckoutProvider,
	publisher EventPublisher,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	if currency == "" {
		currency = payment.DefaultCurrency
	}
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		checkout:  checkout,
		publisher: publisher,
		currency:  currency,
		logger:    logger,
	}
}

// StartCheckout opens a hosted checkout for the booking's authoritative total.
func (s *PaymentService) StartCheckout(ctx context.Context, cur *session.Current, bookingID int64) (*CheckoutDTO, error) {
	bk, err := s.gateway.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !cur.IsAdmin() && !bk.BelongsTo(cur.Email) {
		return nil, apperror.NewNotFoundError("Booking", strconv.FormatInt(bookingID, 10)).WithRedirect("/booking")
	}
	if !bk.Status.CanBeCancelled() {
		return nil, apperror.NewInvalidStateError(bk.Status.String(), "PAID")
	}
	if bk.TotalAmount <= 0 {
		return nil, apperror.NewValidationError("booking has nothing to pay")
	}

	existing, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperror.NewConflictError("This booking has already been paid")
	}

	req := payment.CheckoutRequest{
		BookingID:     bk.ID,
		UserID:        cur.UserID,
		CustomerEmail: bk.CustomerEmail,
		Description:   "Booking #" + bk.IDString(),
		Amount:        bk.TotalAmount,
		Currency:      s.currency,
	}
	if bk.Vehicle != nil {
		req.VehicleID = bk.Vehicle.ID
		req.Description = bk.Vehicle.DisplayName() + " rental, " + strconv.Itoa(bk.Days()) + " day(s)"
	}

	cs, err := s.checkout.CreateCheckout(ctx, req)
	if err != nil {
		return nil, apperror.NewUpstreamError("create_checkout", 0, err)
	}
	return &CheckoutDTO{SessionID: cs.ID, URL: cs.URL, Amount: bk.TotalAmount, Currency: s.currency}, nil
}

// PublishSucceeded forwards a verified provider payment onto the payment topic.
func (s *PaymentService) PublishSucceeded(ctx context.Context, evt contract.PaymentSucceededEvent) error {
	ce, err := kafka.NewCloudEvent(contract.SourceCheckout, contract.PaymentSucceeded, evt)
	if err != nil {
		return err
	}
	return s.publisher.PublishEvent(ctx, contract.TopicPaymentEvents, strconv.FormatInt(evt.BookingID, 10), ce)
}

// RecordPayment adds a payment to the ledger. Replays of the same provider
// reference are accepted and ignored.
func (s *PaymentService) RecordPayment(ctx context.Context, evt contract.PaymentSucceededEvent) error {
	var userID *uuid.UUID
	if id, err := uuid.Parse(evt.UserID); err == nil {
		userID = &id
	}

	p, err := payment.NewPayment(userID, evt.BookingID, evt.VehicleID, rental.Cents(evt.AmountCents),
		evt.Currency, evt.PaymentMethod, evt.ProviderRef, evt.PaidAt)
	if err != nil {
		metrics.PaymentsRecorded.WithLabelValues("invalid").Inc()
		return err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
			s.logger.Info("payment already recorded", zap.String("provider_ref", evt.ProviderRef))
			return nil
		}
		metrics.PaymentsRecorded.WithLabelValues("error").Inc()
		return err
	}

	metrics.PaymentsRecorded.WithLabelValues("recorded").Inc()
	s.logger.Info("payment recorded",
		zap.String("payment_id", p.ID().String()),
		zap.Int64("booking_id", p.BookingID()),
		zap.Stringer("amount", p.Amount()),
	)
	return nil
}

// ListMyPayments returns the caller's payments, newest first.
func (s *PaymentService) ListMyPayments(ctx context.Context, cur *session.Current, page, limit int) ([]PaymentDTO, int64, error) {
	payments, total, err := s.repo.FindByUserID(ctx, cur.UserID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toPaymentDTOs(payments), total, nil
}

// ListBookingPayments returns every payment for a booking (admin).
func (s *PaymentService) ListBookingPayments(ctx context.Context, bookingID int64) ([]PaymentDTO, error) {
	payments, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return toPaymentDTOs(payments), nil
}

func toPaymentDTOs(payments []*payment.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = PaymentDTO{
			ID:            p.ID(),
			BookingID:     p.BookingID(),
			CarID:         p.VehicleID(),
			Amount:        p.Amount(),
			Currency:      p.Currency(),
			PaymentMethod: p.PaymentMethod(),
			PaymentDate:   p.PaidAt(),
		}
	}
	return dtos
}
