package rental

// SalesSummary is the backend's revenue report for a period.
type SalesSummary struct {
	TotalBookings       int64  `json:"totalBookings"`
	TotalRevenue        Cents  `json:"totalRevenue"`
	AverageBookingValue Cents  `json:"averageBookingValue"`
	TotalRentalDays     int64  `json:"totalRentalDays"`
	MostPopularCar      string `json:"mostPopularCar,omitempty"`
	TopCustomer         string `json:"topCustomer,omitempty"`
}

// StatusStats counts bookings per status and sums the revenue-bearing ones.
type StatusStats struct {
	Total    int                   `json:"total"`
	ByStatus map[BookingStatus]int `json:"byStatus"`
	Revenue  Cents                 `json:"revenue"`
}

// SummarizeStatuses tallies bookings by status.
func SummarizeStatuses(bookings []Booking) StatusStats {
	stats := StatusStats{ByStatus: make(map[BookingStatus]int, len(validTransitions))}
	for _, s := range AllBookingStatuses() {
		stats.ByStatus[s] = 0
	}
	for i := range bookings {
		b := &bookings[i]
		stats.Total++
		stats.ByStatus[b.Status]++
		if b.Status.CountsAsRevenue() {
			stats.Revenue += b.TotalAmount
		}
	}
	return stats
}
