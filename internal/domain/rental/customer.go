package rental

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/urbandrives/storefront/internal/platform/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Customer identifies who a booking is for.
type Customer struct {
	Name  string `json:"customerName" validate:"required,max=120"`
	Email string `json:"customerEmail" validate:"required,email,max=254"`
	Phone string `json:"customerPhone,omitempty" validate:"omitempty,max=32"`
}

// BookingRequest is a customer's request to reserve a vehicle.
type BookingRequest struct {
	VehicleID int64     `json:"carId" validate:"gt=0"`
	Customer  Customer  `json:"customer"`
	Range     DateRange `json:"-"`
	Notes     string    `json:"notes,omitempty" validate:"max=1000"`
}

// Normalize trims whitespace from free-text fields.
func (r *BookingRequest) Normalize() {
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.Email = normalizeEmail(r.Customer.Email)
	r.Customer.Phone = strings.TrimSpace(r.Customer.Phone)
	r.Notes = strings.TrimSpace(r.Notes)
}

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"max":      "is too long",
	"gt":       "must be selected",
}

// Validate checks every field of the request. It never touches the network;
// a request that fails here must not be sent anywhere.
func (r *BookingRequest) Validate(today Date) error {
	r.Normalize()
	fields := map[string]string{}
	missing := false

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperror.NewValidationError(err.Error())
		}
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			if fe.Tag() == "required" || fe.Tag() == "gt" {
				missing = true
			}
			fields[fe.Field()] = msg
		}
	}

	switch {
	case r.Range.From.IsZero() || r.Range.To.IsZero():
		if r.Range.From.IsZero() {
			fields["startDate"] = "is required"
		}
		if r.Range.To.IsZero() {
			fields["endDate"] = "is required"
		}
		missing = true
	case r.Range.NumberOfDays() < 1:
		fields["endDate"] = "must be after the start date"
	case r.Range.From.Before(today):
		fields["startDate"] = "cannot be in the past"
	}

	if len(fields) == 0 {
		return nil
	}
	verr := apperror.NewFieldValidationError(fields)
	if !missing {
		verr.Message = firstFieldMessage(fields)
	}
	return verr
}

func firstFieldMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0] + " " + fields[keys[0]]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
