package entities

import "time"

// Ambulance service types
const (
	AmbulanceTypeEmergency    = "emergency"
	AmbulanceTypeNonEmergency = "non_emergency"
)

// Emergency levels of an ambulance request
const (
	EmergencyLevelHigh   = "high"
	EmergencyLevelMedium = "medium"
	EmergencyLevelLow    = "low"
)

// AmbulanceBookingStatusRequested is the status of a new booking; dispatch
// moves it on to assigned, in_transit, completed or cancelled
const AmbulanceBookingStatusRequested = "requested"

// ValidEmergencyLevel reports whether level is high, medium or low
func ValidEmergencyLevel(level string) bool {
	switch level {
	case EmergencyLevelHigh, EmergencyLevelMedium, EmergencyLevelLow:
		return true
	}
	return false
}

// AmbulanceService is an ambulance operator patients can call or book
type AmbulanceService struct {
	ID           string   `json:"id" db:"id"`
	ServiceName  string   `json:"service_name" db:"service_name"`
	PhoneNumber  string   `json:"phone_number" db:"phone_number"`
	ServiceType  string   `json:"service_type" db:"service_type"`
	CoverageArea string   `json:"coverage_area" db:"coverage_area"`
	BasePrice    *float64 `json:"base_price" db:"base_price"`
	PerKmRate    *float64 `json:"per_km_rate" db:"per_km_rate"`
	Rating       *float64 `json:"rating" db:"rating"`
	IsActive     bool     `json:"-" db:"is_active"`
}

// AmbulanceBooking is a transport request. EstimatedAmount is the operator's
// base price; distance charges are settled by the operator.
type AmbulanceBooking struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	AmbulanceServiceID string    `json:"ambulance_service_id" db:"ambulance_service_id"`
	PickupLocation     string    `json:"pickup_location" db:"pickup_location"`
	Destination        string    `json:"destination" db:"destination"`
	EmergencyLevel     string    `json:"emergency_level" db:"emergency_level"`
	PatientCondition   string    `json:"patient_condition,omitempty" db:"patient_condition"`
	Status             string    `json:"status" db:"status"`
	EstimatedAmount    *float64  `json:"estimated_amount" db:"estimated_amount"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
