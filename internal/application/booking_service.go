package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/contract"
	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/kafka"
	"github.com/urbandrives/storefront/internal/platform/metrics"
)

// EventPublisher publishes CloudEvents.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the booking form as submitted by the browser.
type CreateBookingRequest struct {
	CarID         int64  `json:"carId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Notes         string `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	rental.Booking
	Days      int    `json:"days"`
	CanCancel bool   `json:"canCancel"`
	CarName   string `json:"carName,omitempty"`
}

// CreateBookingResult is returned after the backend accepts a booking.
type CreateBookingResult struct {
	Booking  BookingDTO   `json:"booking"`
	Estimate rental.Quote `json:"estimate"`
	Redirect string       `json:"redirect"`
}

// BookingService drives the booking lifecycle against the backend of record.
type BookingService struct {
	gateway   rental.Gateway
	pricing   rental.PricingStrategy
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	gateway rental.Gateway,
	pricing rental.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		gateway:   gateway,
		pricing:   pricing,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBooking validates the form, re-checks the vehicle and submits the
// booking. Nothing is sent anywhere until the form is valid.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	br, err := buildBookingRequest(req)
	if err == nil {
		err = br.Validate(rental.DateOf(s.now()))
	}
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}

	vehicle, err := s.gateway.GetVehicle(ctx, br.VehicleID)
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("vehicle_error").Inc()
		return nil, err
	}

	if elig := rental.CheckBookable(vehicle, br.Range); !elig.Bookable {
		metrics.BookingsSubmitted.WithLabelValues("not_bookable").Inc()
		return nil, apperror.NewValidationError(elig.Message)
	}
	estimate := s.pricing.Quote(br.Range, vehicle)

	bk, err := s.gateway.CreateBooking(ctx, br)
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("rejected").Inc()
		s.logger.Info("booking submission failed",
			zap.Int64("car_id", br.VehicleID),
			zap.String("start", br.Range.From.String()),
			zap.String("end", br.Range.To.String()),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.BookingsSubmitted.WithLabelValues("created").Inc()

	if bk.TotalAmount != estimate.Total {
		s.logger.Info("backend total differs from estimate",
			zap.Int64("booking_id", bk.ID),
			zap.Stringer("estimate", estimate.Total),
			zap.Stringer("total", bk.TotalAmount),
		)
	}
	if bk.Vehicle == nil {
		bk.Vehicle = vehicle
	}

	s.publishEvent(ctx, contract.BookingCreated, bk.IDString(), contract.BookingCreatedEvent{
		BookingID:       bk.ID,
		VehicleID:       br.VehicleID,
		CustomerEmail:   bk.CustomerEmail,
		StartDate:       bk.StartDate.String(),
		EndDate:         bk.EndDate.String(),
		Days:            bk.Days(),
		EstimatedAmount: int64(estimate.Total),
		TotalAmount:     int64(bk.TotalAmount),
		Status:          bk.Status.String(),
		OccurredAt:      s.now().UTC(),
	})

	return &CreateBookingResult{
		Booking:  toBookingDTO(bk),
		Estimate: estimate,
		Redirect: "/booking-success?bookingId=" + bk.IDString(),
	}, nil
}

// GetBooking returns one booking. Customers only see their own; anything
// else is reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, cur *session.Current, bookingID int64) (*BookingDTO, error) {
	bk, err := s.fetchVisible(ctx, cur, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// ListBookings lists the caller's bookings, or every booking for an admin.
func (s *BookingService) ListBookings(ctx context.Context, cur *session.Current) ([]BookingDTO, error) {
	filter := rental.BookingFilter{}
	if !cur.IsAdmin() {
		filter.CustomerEmail = cur.Email
	}
	bookings, err := s.gateway.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i := range bookings {
		dtos[i] = toBookingDTO(&bookings[i])
	}
	return dtos, nil
}

// CancelBooking requests cancellation of a booking in its last known state.
// The status guard runs before any network call. On success the booking is
// refetched; the returned record is the backend's, not a local edit.
func (s *BookingService) CancelBooking(ctx context.Context, current *rental.Booking) (*BookingDTO, error) {
	if err := current.EnsureCancellable(); err != nil {
		return nil, err
	}

	if err := s.gateway.CancelBooking(ctx, current.ID); err != nil {
		s.logger.Info("booking cancellation failed",
			zap.Int64("booking_id", current.ID),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.BookingsCancelled.Inc()

	refreshed, err := s.gateway.GetBooking(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("booking %d cancelled but could not be reloaded: %w", current.ID, err)
	}

	evt := contract.BookingCancelledEvent{
		BookingID:      refreshed.ID,
		CustomerEmail:  refreshed.CustomerEmail,
		PreviousStatus: current.Status.String(),
		Status:         refreshed.Status.String(),
		OccurredAt:     s.now().UTC(),
	}
	if cur, ok := session.FromContext(ctx); ok {
		evt.CancelledBy = cur.Email
	}
	s.publishEvent(ctx, contract.BookingCancelled, refreshed.IDString(), evt)

	dto := toBookingDTO(refreshed)
	return &dto, nil
}

// CancelOwnBooking loads a booking the caller may see and cancels it.
func (s *BookingService) CancelOwnBooking(ctx context.Context, cur *session.Current, bookingID int64) (*BookingDTO, error) {
	bk, err := s.fetchVisible(ctx, cur, bookingID)
	if err != nil {
		return nil, err
	}
	return s.CancelBooking(ctx, bk)
}

// --- Helpers ---

func (s *BookingService) fetchVisible(ctx context.Context, cur *session.Current, bookingID int64) (*rental.Booking, error) {
	if bookingID <= 0 {
		return nil, apperror.NewValidationError("booking ID must be positive")
	}
	bk, err := s.gateway.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !cur.IsAdmin() && !bk.BelongsTo(cur.Email) {
		return nil, apperror.NewNotFoundError("Booking", strconv.FormatInt(bookingID, 10)).WithRedirect("/booking")
	}
	return bk, nil
}

func buildBookingRequest(req CreateBookingRequest) (rental.BookingRequest, error) {
	br := rental.BookingRequest{
		VehicleID: req.CarID,
		Customer: rental.Customer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Notes: req.Notes,
	}

	fields := map[string]string{}
	var err error
	if br.Range.From, err = rental.ParseDate(req.StartDate); err != nil {
		fields["startDate"] = "must be a date in yyyy-MM-dd format"
	}
	if br.Range.To, err = rental.ParseDate(req.EndDate); err != nil {
		fields["endDate"] = "must be a date in yyyy-MM-dd format"
	}
	if len(fields) > 0 {
		verr := apperror.NewFieldValidationError(fields)
		verr.Message = "Please select valid rental dates"
		return br, verr
	}
	return br, nil
}

func toBookingDTO(bk *rental.Booking) BookingDTO {
	dto := BookingDTO{
		Booking:   *bk,
		Days:      bk.Days(),
		CanCancel: bk.CanCancel(),
	}
	if bk.Vehicle != nil {
		dto.CarName = bk.Vehicle.DisplayName()
	}
	return dto
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(contract.SourceStorefront, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, contract.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", contract.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
