package backend

import "github.com/urbandrives/storefront/internal/domain/rental"

// createBookingBody is the POST /api/bookings payload.
type createBookingBody struct {
	CarID         int64       `json:"carId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	StartDate     rental.Date `json:"startDate"`
	EndDate       rental.Date `json:"endDate"`
	Notes         string      `json:"notes,omitempty"`
}

func newCreateBookingBody(req rental.BookingRequest) createBookingBody {
	return createBookingBody{
		CarID:         req.VehicleID,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: req.Customer.Phone,
		StartDate:     req.Range.From,
		EndDate:       req.Range.To,
		Notes:         req.Notes,
	}
}

// errorBody is how the backend reports a refused request.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) reason() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}
