package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

func newVehicleStack() (*VehicleService, *ReportService, *fakeGateway) {
	gw := newFakeGateway()
	gw.vehicles[1] = &rental.Vehicle{ID: 1, Make: "Toyota", Model: "Camry", Year: 2023, DailyRate: 5000, Status: rental.VehicleAvailable}
	gw.vehicles[2] = &rental.Vehicle{ID: 2, Make: "Ford", Model: "Focus", Year: 2022, DailyRate: 4000, Status: rental.VehicleRented}
	return NewVehicleService(gw, rental.NewDailyRatePricing(), zap.NewNop()), NewReportService(gw, zap.NewNop()), gw
}

func TestQuote(t *testing.T) {
	svc, _, _ := newVehicleStack()

	q, err := svc.Quote(context.Background(), 1, "2024-02-15", "2024-02-17")
	require.NoError(t, err)
	assert.True(t, q.Quote.Valid)
	assert.Equal(t, rental.Cents(10000), q.Quote.Total)
	assert.True(t, q.Eligibility.Bookable)

	q, err = svc.Quote(context.Background(), 1, "", "")
	require.NoError(t, err)
	assert.False(t, q.Quote.Valid)
	assert.Equal(t, rental.ReasonNoDatesSelected, q.Eligibility.Reason)

	q, err = svc.Quote(context.Background(), 2, "2024-02-15", "2024-02-17")
	require.NoError(t, err)
	assert.True(t, q.Quote.Valid, "a price is still shown for an unavailable car")
	assert.Equal(t, rental.ReasonVehicleUnavailable, q.Eligibility.Reason)
}

func TestQuote_UnknownCar(t *testing.T) {
	svc, _, _ := newVehicleStack()

	_, err := svc.Quote(context.Background(), 404, "2024-02-15", "2024-02-17")
	var nf *apperror.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "/cars", nf.Redirect)
}

func TestListAvailable(t *testing.T) {
	svc, _, _ := newVehicleStack()

	cars, err := svc.ListAvailable(context.Background(), "", "2024-02-15", "2024-02-17")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, int64(1), cars[0].ID)

	_, err = svc.ListAvailable(context.Background(), "", "2024-02-17", "2024-02-15")
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, gw := newVehicleStack()

	v, err := svc.UpdateStatus(context.Background(), 1, "maintenance")
	require.NoError(t, err)
	assert.Equal(t, rental.VehicleMaintenance, v.Status)
	assert.Equal(t, rental.VehicleMaintenance, gw.vehicles[1].Status)

	_, err = svc.UpdateStatus(context.Background(), 1, "SOLD")
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReports(t *testing.T) {
	_, reports, gw := newVehicleStack()
	gw.bookings[1] = &rental.Booking{ID: 1, Status: rental.StatusCompleted, TotalAmount: 10000}
	gw.bookings[2] = &rental.Booking{ID: 2, Status: rental.StatusCancelled, TotalAmount: 5000}

	stats, err := reports.BookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, rental.Cents(10000), stats.Revenue)

	summary, err := reports.SalesSummary(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalBookings)

	_, err = reports.SalesSummary(context.Background(), "2024-02-01", "2024-01-01")
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}
