package rental

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VehicleStatus is the fleet state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleRented      VehicleStatus = "RENTED"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleUnavailable VehicleStatus = "UNAVAILABLE"
)

// IsValid returns true if the status is one of the four known values.
func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleAvailable, VehicleRented, VehicleMaintenance, VehicleUnavailable:
		return true
	}
	return false
}

func (s VehicleStatus) String() string { return string(s) }

// ParseVehicleStatus normalizes and validates a status string.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	status := VehicleStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vehicle status: %s", s)
	}
	return status, nil
}

// UnmarshalJSON rejects unknown statuses at the boundary.
func (s *VehicleStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("vehicle status must be a string: %w", err)
	}
	parsed, err := ParseVehicleStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Vehicle is a read-only snapshot of a fleet vehicle as the backend reports it.
type Vehicle struct {
	ID           int64         `json:"id"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Color        string        `json:"color,omitempty"`
	LicensePlate string        `json:"licensePlate,omitempty"`
	DailyRate    Cents         `json:"dailyRate"`
	Status       VehicleStatus `json:"status"`
	Description  string        `json:"description,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Location     string        `json:"location,omitempty"`
	CreatedAt    Timestamp     `json:"createdAt"`
	UpdatedAt    Timestamp     `json:"updatedAt"`
}

// DisplayName is the make, model and year as shown on booking summaries.
func (v *Vehicle) DisplayName() string {
	return fmt.Sprintf("%s %s (%d)", v.Make, v.Model, v.Year)
}

// Validate checks the invariants a snapshot must satisfy before it is priced.
func (v *Vehicle) Validate() error {
	if v.ID <= 0 {
		return fmt.Errorf("vehicle id must be positive")
	}
	if v.DailyRate < 0 {
		return fmt.Errorf("vehicle %d has a negative daily rate", v.ID)
	}
	if !v.Status.IsValid() {
		return fmt.Errorf("vehicle %d has invalid status %q", v.ID, v.Status)
	}
	return nil
}

// VehicleFilter narrows a catalog listing.
type VehicleFilter struct {
	AvailableOnly bool
	Range         DateRange
	Location      string
}
