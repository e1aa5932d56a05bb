package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Consultation types
const (
	ConsultationInPerson = "in-person"
	ConsultationVideo    = "video"
)

// Date and time layouts used on the wire
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment represents a booked consultation
type Appointment struct {
	ID                 string            `json:"id" db:"id"`
	UserID             string            `json:"user_id" db:"user_id"`
	DoctorID           string            `json:"doctor_id" db:"doctor_id"`
	DoctorName         string            `json:"doctor_name,omitempty" db:"doctor_name"`
	DoctorSpecialty    string            `json:"doctor_specialty,omitempty" db:"doctor_specialty"`
	AppointmentDate    time.Time         `json:"appointment_date" db:"appointment_date"`
	AppointmentTime    string            `json:"appointment_time" db:"appointment_time"`
	Status             AppointmentStatus `json:"status" db:"status"`
	Symptoms           string            `json:"symptoms,omitempty" db:"symptoms"`
	ConsultationType   string            `json:"consultation_type" db:"consultation_type"`
	Amount             *float64          `json:"amount,omitempty" db:"amount"`
	HMISAppointmentID  string            `json:"hmis_appointment_id,omitempty" db:"hmis_appointment_id"`
	ConfirmationNumber string            `json:"confirmation_number,omitempty" db:"confirmation_number"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentRequest is the booking input
type AppointmentRequest struct {
	DoctorID         string `json:"doctor_id"`
	AppointmentDate  string `json:"appointment_date"`
	AppointmentTime  string `json:"appointment_time"`
	Symptoms         string `json:"symptoms"`
	ConsultationType string `json:"consultation_type"`
}

// AppointmentView is an appointment joined with its doctor for listing
type AppointmentView struct {
	ID               string            `json:"id"`
	DoctorName       string            `json:"doctor_name"`
	DoctorSpecialty  *string           `json:"doctor_specialty"`
	AppointmentDate  string            `json:"appointment_date"`
	AppointmentTime  string            `json:"appointment_time"`
	Status           AppointmentStatus `json:"status"`
	Symptoms         string            `json:"symptoms"`
	ConsultationType string            `json:"consultation_type"`
	Amount           *float64          `json:"amount"`
}
