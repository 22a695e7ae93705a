package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, from, to string) DateRange {
	t.Helper()
	r, err := NewDateRange(from, to)
	require.NoError(t, err)
	return r
}

func availableVehicle(rate Cents) *Vehicle {
	return &Vehicle{ID: 1, Make: "Toyota", Model: "Camry", Year: 2023, DailyRate: rate, Status: VehicleAvailable}
}

// TestComputeQuote_TwoDaysAtFifty checks the canonical 2024-02-15 to 2024-02-17 quote.
func TestComputeQuote_TwoDaysAtFifty(t *testing.T) {
	q := ComputeQuote(mustRange(t, "2024-02-15", "2024-02-17"), availableVehicle(5000))

	assert.True(t, q.Valid)
	assert.Equal(t, 2, q.Days)
	assert.Equal(t, Cents(5000), q.DailyRate)
	assert.Equal(t, Cents(10000), q.Total)
	assert.Equal(t, "100.00", q.Total.String())
}

func TestComputeQuote_Invalid(t *testing.T) {
	v := availableVehicle(5000)

	tests := []struct {
		name string
		r    DateRange
		v    *Vehicle
		days int
	}{
		{"no dates", DateRange{}, v, 0},
		{"only start", mustRange(t, "2024-02-15", ""), v, 0},
		{"only end", mustRange(t, "", "2024-02-17"), v, 0},
		{"same day", mustRange(t, "2024-02-15", "2024-02-15"), v, 0},
		{"reversed", mustRange(t, "2024-02-17", "2024-02-15"), v, -2},
		{"no vehicle", mustRange(t, "2024-02-15", "2024-02-17"), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ComputeQuote(tt.r, tt.v)
			assert.False(t, q.Valid)
			assert.Equal(t, tt.days, q.Days)
			assert.Equal(t, Cents(0), q.Total)
		})
	}
}

// TestComputeQuote_TotalIsRateTimesDays walks a range of spans and rates.
func TestComputeQuote_TotalIsRateTimesDays(t *testing.T) {
	start := NewDate(2024, 2, 20)
	rates := []Cents{0, 1, 4999, 5000, 12345}

	for days := 1; days <= 400; days += 7 {
		for _, rate := range rates {
			r := DateRange{From: start, To: start.AddDays(days)}
			q := ComputeQuote(r, availableVehicle(rate))
			require.True(t, q.Valid)
			require.Equal(t, days, q.Days)
			require.Equal(t, rate*Cents(days), q.Total)
		}
	}
}

func TestComputeQuote_AcrossLeapDayAndMonthEnd(t *testing.T) {
	q := ComputeQuote(mustRange(t, "2024-02-28", "2024-03-01"), availableVehicle(2500))
	assert.Equal(t, 2, q.Days)
	assert.Equal(t, Cents(5000), q.Total)

	q = ComputeQuote(mustRange(t, "2023-12-31", "2024-01-01"), availableVehicle(2500))
	assert.Equal(t, 1, q.Days)
}

func TestDateRange_NumberOfDaysRoundsUp(t *testing.T) {
	r := DateRange{From: NewDate(2024, 1, 1), To: NewDate(2024, 1, 3)}
	assert.Equal(t, 2, r.NumberOfDays())
	assert.Equal(t, 0, DateRange{From: NewDate(2024, 1, 1)}.NumberOfDays())
}

func TestDateRange_NumberOfDaysLongRanges(t *testing.T) {
	r := DateRange{From: NewDate(2030, 1, 1), To: NewDate(2400, 1, 1)}
	assert.Equal(t, 135139, r.NumberOfDays())

	reversed := DateRange{From: r.To, To: r.From}
	assert.Equal(t, -135139, reversed.NumberOfDays())
}
