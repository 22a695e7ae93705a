package application

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// QuoteDTO combines a vehicle with the price and bookability of a date range.
type QuoteDTO struct {
	Vehicle     *rental.Vehicle    `json:"car"`
	Range       rental.DateRange   `json:"range"`
	Quote       rental.Quote       `json:"quote"`
	Eligibility rental.Eligibility `json:"eligibility"`
}

// VehicleService serves the catalog and pre-booking quotes.
type VehicleService struct {
	gateway rental.Gateway
	pricing rental.PricingStrategy
	logger  *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(gateway rental.Gateway, pricing rental.PricingStrategy, logger *zap.Logger) *VehicleService {
	return &VehicleService{gateway: gateway, pricing: pricing, logger: logger}
}

// GetVehicle returns one vehicle.
func (s *VehicleService) GetVehicle(ctx context.Context, id int64) (*rental.Vehicle, error) {
	if id <= 0 {
		return nil, apperror.NewNotFoundError("Car", strconv.FormatInt(id, 10)).WithRedirect("/cars")
	}
	return s.gateway.GetVehicle(ctx, id)
}

// ListAvailable lists bookable vehicles, optionally narrowed by location and dates.
func (s *VehicleService) ListAvailable(ctx context.Context, location, startDate, endDate string) ([]rental.Vehicle, error) {
	r, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if r.IsComplete() && r.NumberOfDays() < 1 {
		return nil, apperror.NewValidationError(rental.ReasonInvalidDateRange.Message())
	}
	return s.gateway.ListVehicles(ctx, rental.VehicleFilter{AvailableOnly: true, Range: r, Location: location})
}

// ListAll lists the whole fleet (admin).
func (s *VehicleService) ListAll(ctx context.Context) ([]rental.Vehicle, error) {
	return s.gateway.ListVehicles(ctx, rental.VehicleFilter{})
}

// Quote prices a range for a vehicle and says whether it can be booked.
// Incomplete ranges are not an error: the quote is simply not valid yet.
func (s *VehicleService) Quote(ctx context.Context, id int64, startDate, endDate string) (*QuoteDTO, error) {
	r, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{
		Vehicle:     vehicle,
		Range:       r,
		Quote:       s.pricing.Quote(r, vehicle),
		Eligibility: rental.CheckBookable(vehicle, r),
	}, nil
}

// UpdateStatus changes a vehicle's fleet status (admin).
func (s *VehicleService) UpdateStatus(ctx context.Context, id int64, status string) (*rental.Vehicle, error) {
	parsed, err := rental.ParseVehicleStatus(status)
	if err != nil {
		return nil, apperror.NewFieldValidationError(map[string]string{"status": err.Error()})
	}
	v, err := s.gateway.UpdateVehicleStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vehicle status updated", zap.Int64("car_id", id), zap.String("status", parsed.String()))
	return v, nil
}

func parseRange(startDate, endDate string) (rental.DateRange, error) {
	r, err := rental.NewDateRange(startDate, endDate)
	if err != nil {
		return rental.DateRange{}, apperror.NewValidationError(err.Error())
	}
	return r, nil
}
