package providers

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// ErrHospitalSystemUnavailable is returned when no hospital system is configured
// or it could not be reached
var ErrHospitalSystemUnavailable = errors.New("hospital system unavailable")

// HospitalSystemProvider talks to an external hospital management system
type HospitalSystemProvider interface {
	// SearchDoctors returns doctors known to the hospital system, tagged with
	// source hmis and ids in the hmis_ namespace
	SearchDoctors(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error)

	// GetDoctorAvailability returns open HH:MM slots for a doctor on a date.
	// doctorID may carry the hmis_ prefix.
	GetDoctorAvailability(ctx context.Context, doctorID string, date time.Time) ([]string, error)

	// ShareProfile pushes a patient profile to a hospital and returns the share token
	ShareProfile(ctx context.Context, share entities.ProfileShare) (string, error)

	// BookAppointment books an appointment in the hospital system
	BookAppointment(ctx context.Context, booking entities.HMISBooking) (*entities.HMISBookingResult, error)

	// ListHospitals returns the hospitals reachable through the system
	ListHospitals(ctx context.Context) ([]entities.Hospital, error)
}
