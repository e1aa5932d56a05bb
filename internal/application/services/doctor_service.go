package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultHMISSearchTimeout = 10 * time.Second

// DoctorService merges local doctors with hospital-system doctors and
// computes free slots
type DoctorService struct {
	doctors      repositories.DoctorRepository
	appointments repositories.AppointmentRepository
	hmis         providers.HospitalSystemProvider
	hmisTimeout  time.Duration
}

// NewDoctorService creates a new doctor service. hmis may be nil.
func NewDoctorService(
	doctors repositories.DoctorRepository,
	appointments repositories.AppointmentRepository,
	hmis providers.HospitalSystemProvider,
	hmisTimeout time.Duration,
) *DoctorService {
	if hmisTimeout <= 0 {
		hmisTimeout = defaultHMISSearchTimeout
	}
	return &DoctorService{
		doctors:      doctors,
		appointments: appointments,
		hmis:         hmis,
		hmisTimeout:  hmisTimeout,
	}
}

// Search returns local doctors followed by hospital-system doctors. Both
// sources are queried concurrently; a hospital-system failure or timeout
// leaves only the local results.
func (s *DoctorService) Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	var local, remote []*entities.Doctor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.doctors.Search(gctx, filter)
		if err != nil {
			return err
		}
		local = found
		return nil
	})

	if s.hmis != nil {
		g.Go(func() error {
			hctx, cancel := context.WithTimeout(gctx, s.hmisTimeout)
			defer cancel()

			found, err := s.hmis.SearchDoctors(hctx, filter)
			if err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Hospital system doctor search failed, returning local doctors only")
				return nil
			}
			remote = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*entities.Doctor, 0, len(local)+len(remote))
	for _, d := range local {
		d.Source = entities.DoctorSourceLocal
		merged = append(merged, d)
	}
	for _, d := range remote {
		d.Source = entities.DoctorSourceHMIS
		if !entities.IsHMISDoctorID(d.ID) {
			d.ID = entities.HMISIDPrefix + d.ID
		}
		merged = append(merged, d)
	}
	return merged, nil
}

// GetAvailability returns the free slots of a doctor on date. Hospital-system
// doctors are resolved by their id prefix; local doctors use their weekly
// schedule. Booked slots are removed in both cases.
func (s *DoctorService) GetAvailability(ctx context.Context, doctorID string, date time.Time) (*entities.AvailabilitySet, error) {
	var slots []string

	if entities.IsHMISDoctorID(doctorID) {
		if s.hmis == nil {
			return nil, apperrors.NewUpstreamUnreachableError("hospital system is not configured", providers.ErrHospitalSystemUnavailable)
		}
		remote, err := s.hmis.GetDoctorAvailability(ctx, doctorID, date)
		if err != nil {
			return nil, apperrors.NewUpstreamUnreachableError("failed to fetch doctor availability", err)
		}
		slots = remote
	} else {
		doctor, err := s.doctors.GetByID(ctx, doctorID)
		if err != nil {
			return nil, err
		}
		slots = doctor.Availability.SlotsFor(date)
	}

	booked, err := s.appointments.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return &entities.AvailabilitySet{
		DoctorID:       doctorID,
		Date:           date.Format(entities.DateLayout),
		AvailableSlots: freeSlots(slots, booked),
	}, nil
}

// freeSlots removes booked times from slots, keeping source order
func freeSlots(slots, booked []string) []string {
	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[slotKey(b)] = true
	}

	free := make([]string, 0, len(slots))
	for _, slot := range slots {
		if taken[slotKey(slot)] {
			continue
		}
		free = append(free, slot)
	}
	return free
}

// slotKey canonicalises "9:00" to "09:00"; unparseable slots compare verbatim
func slotKey(slot string) string {
	t, err := time.Parse(entities.TimeLayout, strings.TrimSpace(slot))
	if err != nil {
		return slot
	}
	return t.Format(entities.TimeLayout)
}
