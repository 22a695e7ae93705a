package rental

// Reason explains why a vehicle cannot be booked for a range.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonVehicleMissing     Reason = "vehicle_missing"
	ReasonNoDatesSelected    Reason = "no_dates_selected"
	ReasonVehicleUnavailable Reason = "vehicle_unavailable"
	ReasonInvalidDateRange   Reason = "invalid_date_range"
)

// Message is the notification text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonVehicleMissing:
		return "Car not found"
	case ReasonNoDatesSelected:
		return "Please select rental dates"
	case ReasonVehicleUnavailable:
		return "This car is not available for booking"
	case ReasonInvalidDateRange:
		return "End date must be after start date"
	default:
		return ""
	}
}

// Eligibility is the outcome of a bookability check.
type Eligibility struct {
	Bookable bool   `json:"bookable"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

// CheckBookable decides whether v may be booked for r. It is a client-side
// pre-check; the backend still decides on overlapping bookings.
func CheckBookable(v *Vehicle, r DateRange) Eligibility {
	reason := ReasonNone
	switch {
	case v == nil:
		reason = ReasonVehicleMissing
	case !r.IsComplete():
		reason = ReasonNoDatesSelected
	case v.Status != VehicleAvailable:
		reason = ReasonVehicleUnavailable
	case r.NumberOfDays() < 1:
		reason = ReasonInvalidDateRange
	}
	if reason != ReasonNone {
		return Eligibility{Reason: reason, Message: reason.Message()}
	}
	return Eligibility{Bookable: true}
}

// IsBookable reports whether CheckBookable would allow the booking.
func IsBookable(v *Vehicle, r DateRange) bool {
	return CheckBookable(v, r).Bookable
}
