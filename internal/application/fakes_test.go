package application

import (
	"context"
	"strconv"
	"sync"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/kafka"
)

// fakeGateway is an in-memory backend that counts every call.
type fakeGateway struct {
	mu        sync.Mutex
	vehicles  map[int64]*rental.Vehicle
	bookings  map[int64]*rental.Booking
	nextID    int64
	calls     int
	createErr error
	cancelErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		vehicles: map[int64]*rental.Vehicle{},
		bookings: map[int64]*rental.Booking{},
		nextID:   99,
	}
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) GetVehicle(_ context.Context, id int64) (*rental.Vehicle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	v, ok := g.vehicles[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Car", strconv.FormatInt(id, 10)).WithRedirect("/cars")
	}
	cp := *v
	return &cp, nil
}

func (g *fakeGateway) ListVehicles(_ context.Context, filter rental.VehicleFilter) ([]rental.Vehicle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	var out []rental.Vehicle
	for _, v := range g.vehicles {
		if filter.AvailableOnly && v.Status != rental.VehicleAvailable {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (g *fakeGateway) UpdateVehicleStatus(_ context.Context, id int64, status rental.VehicleStatus) (*rental.Vehicle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	v, ok := g.vehicles[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Car", strconv.FormatInt(id, 10))
	}
	v.Status = status
	cp := *v
	return &cp, nil
}

func (g *fakeGateway) CreateBooking(_ context.Context, req rental.BookingRequest) (*rental.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	v := g.vehicles[req.VehicleID]
	b := &rental.Booking{
		ID:            g.nextID,
		Vehicle:       v,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		StartDate:     req.Range.From,
		EndDate:       req.Range.To,
		TotalAmount:   v.DailyRate.Mul(req.Range.NumberOfDays()),
		Status:        rental.StatusPending,
	}
	g.bookings[b.ID] = b
	g.nextID++
	cp := *b
	return &cp, nil
}

func (g *fakeGateway) GetBooking(_ context.Context, id int64) (*rental.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	b, ok := g.bookings[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Booking", strconv.FormatInt(id, 10)).WithRedirect("/booking")
	}
	cp := *b
	return &cp, nil
}

func (g *fakeGateway) ListBookings(_ context.Context, filter rental.BookingFilter) ([]rental.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	var out []rental.Booking
	for _, b := range g.bookings {
		if filter.CustomerEmail != "" && !b.BelongsTo(filter.CustomerEmail) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (g *fakeGateway) CancelBooking(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.cancelErr != nil {
		return g.cancelErr
	}
	b, ok := g.bookings[id]
	if !ok {
		return apperror.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	b.Status = rental.StatusCancelled
	return nil
}

func (g *fakeGateway) SalesSummary(_ context.Context, _ rental.DateRange) (*rental.SalesSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return &rental.SalesSummary{TotalBookings: int64(len(g.bookings))}, nil
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
