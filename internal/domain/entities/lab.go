package entities

import "time"

// LabTest is an entry of the lab test catalogue
type LabTest struct {
	ID                      string   `json:"id" db:"id"`
	Name                    string   `json:"name" db:"name"`
	Description             string   `json:"description" db:"description"`
	Category                string   `json:"category" db:"category"`
	NormalRange             string   `json:"normal_range" db:"normal_range"`
	Price                   *float64 `json:"price" db:"price"`
	PreparationInstructions string   `json:"preparation_instructions" db:"preparation_instructions"`
	IsActive                bool     `json:"-" db:"is_active"`
}

// LabBooking is a set of tests booked together
type LabBooking struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	DoctorID    string     `json:"doctor_id,omitempty" db:"doctor_id"`
	TestIDs     StringList `json:"test_ids" db:"test_ids"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// LabBookingStatusBooked is the initial lab booking status
const LabBookingStatusBooked = "booked"
