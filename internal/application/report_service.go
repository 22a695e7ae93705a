package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// ReportService serves the admin sales reports.
type ReportService struct {
	gateway rental.Gateway
	logger  *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(gateway rental.Gateway, logger *zap.Logger) *ReportService {
	return &ReportService{gateway: gateway, logger: logger}
}

// SalesSummary returns the backend's sales summary for the period.
func (s *ReportService) SalesSummary(ctx context.Context, startDate, endDate string) (*rental.SalesSummary, error) {
	r, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if r.IsComplete() && r.To.Before(r.From) {
		return nil, apperror.NewFieldValidationError(map[string]string{"endDate": "must not be before the start date"})
	}
	s.logger.Debug("sales summary requested",
		zap.String("start", r.From.String()),
		zap.String("end", r.To.String()),
	)
	return s.gateway.SalesSummary(ctx, r)
}

// BookingStats counts every booking by status.
func (s *ReportService) BookingStats(ctx context.Context) (*rental.StatusStats, error) {
	bookings, err := s.gateway.ListBookings(ctx, rental.BookingFilter{})
	if err != nil {
		return nil, err
	}
	stats := rental.SummarizeStatuses(bookings)
	return &stats, nil
}
