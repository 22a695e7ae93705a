// Package rental holds the storefront's view of the rental domain: vehicles,
// bookings, the price resolver and the contract of the backend that owns them.
package rental

import "context"

// Gateway is the backend of record for vehicles and bookings. Every call is
// authenticated with a freshly acquired bearer token.
type Gateway interface {
	GetVehicle(ctx context.Context, id int64) (*Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id int64, status VehicleStatus) (*Vehicle, error)

	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	CancelBooking(ctx context.Context, id int64) error

	SalesSummary(ctx context.Context, r DateRange) (*SalesSummary, error)
}
