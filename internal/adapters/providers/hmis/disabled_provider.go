package hmis

import (
	"context"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
)

// DisabledProvider stands in when no hospital system is configured. Lookups
// answer empty and writes fail with ErrHospitalSystemUnavailable.
type DisabledProvider struct{}

// NewDisabledProvider creates a provider for deployments without HMIS
func NewDisabledProvider() *DisabledProvider {
	return &DisabledProvider{}
}

func (DisabledProvider) SearchDoctors(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	return []*entities.Doctor{}, nil
}

func (DisabledProvider) GetDoctorAvailability(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	return nil, providers.ErrHospitalSystemUnavailable
}

func (DisabledProvider) ShareProfile(ctx context.Context, share entities.ProfileShare) (string, error) {
	return "", providers.ErrHospitalSystemUnavailable
}

func (DisabledProvider) BookAppointment(ctx context.Context, booking entities.HMISBooking) (*entities.HMISBookingResult, error) {
	return nil, providers.ErrHospitalSystemUnavailable
}

func (DisabledProvider) ListHospitals(ctx context.Context) ([]entities.Hospital, error) {
	return []entities.Hospital{}, nil
}
