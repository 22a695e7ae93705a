package rental

// PricingStrategy prices a date range for a vehicle.
type PricingStrategy interface {
	Quote(r DateRange, v *Vehicle) Quote
}

// Quote is the pre-booking estimate shown to the customer. It is advisory:
// the backend computes the authoritative total at creation.
type Quote struct {
	Days      int   `json:"days"`
	DailyRate Cents `json:"dailyRate"`
	Total     Cents `json:"total"`
	Valid     bool  `json:"valid"`
}

// DailyRatePricing charges the vehicle's daily rate per started day.
type DailyRatePricing struct{}

// NewDailyRatePricing creates a DailyRatePricing.
func NewDailyRatePricing() *DailyRatePricing {
	return &DailyRatePricing{}
}

// Quote is valid only when both dates are set, the vehicle is known and the
// range spans at least one day. An invalid quote carries no total.
func (p *DailyRatePricing) Quote(r DateRange, v *Vehicle) Quote {
	if v == nil || !r.IsComplete() {
		return Quote{}
	}
	days := r.NumberOfDays()
	if days < 1 {
		return Quote{Days: days, DailyRate: v.DailyRate}
	}
	return Quote{
		Days:      days,
		DailyRate: v.DailyRate,
		Total:     v.DailyRate.Mul(days),
		Valid:     true,
	}
}

// ComputeQuote prices r for v with the daily rate strategy.
func ComputeQuote(r DateRange, v *Vehicle) Quote {
	return NewDailyRatePricing().Quote(r, v)
}
