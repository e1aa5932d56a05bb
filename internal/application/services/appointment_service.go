package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// AppointmentService handles appointment booking logic
type AppointmentService struct {
	repo          repositories.AppointmentRepository
	doctors       repositories.DoctorRepository
	users         repositories.UserRepository
	hmis          providers.HospitalSystemProvider
	notifications *NotificationService
	clock         Clock
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	doctors repositories.DoctorRepository,
	users repositories.UserRepository,
	hmis providers.HospitalSystemProvider,
	notifications *NotificationService,
	clock Clock,
) *AppointmentService {
	return &AppointmentService{
		repo:          repo,
		doctors:       doctors,
		users:         users,
		hmis:          hmis,
		notifications: notifications,
		clock:         clock,
	}
}

// Book books a consultation for userID
func (s *AppointmentService) Book(ctx context.Context, userID string, req entities.AppointmentRequest) (*entities.Appointment, error) {
	// 1. Validate input
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	if req.DoctorID == "" || req.AppointmentDate == "" || req.AppointmentTime == "" {
		return nil, apperrors.NewValidationError("Doctor ID, date, and time are required")
	}
	date, err := time.Parse(entities.DateLayout, req.AppointmentDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date or time format")
	}
	slot, err := time.Parse(entities.TimeLayout, req.AppointmentTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date or time format")
	}
	// "9:00" and "09:00" must name the same slot
	req.AppointmentTime = slot.Format(entities.TimeLayout)

	// 2. Reject taken slots
	taken, err := s.repo.IsSlotTaken(ctx, req.DoctorID, date, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("Time slot is already booked")
	}

	now := s.clock.now()
	consultation := req.ConsultationType
	if consultation == "" {
		consultation = entities.ConsultationInPerson
	}
	appointment := &entities.Appointment{
		ID:               uuid.New().String(),
		UserID:           userID,
		DoctorID:         req.DoctorID,
		AppointmentDate:  date,
		AppointmentTime:  req.AppointmentTime,
		Status:           entities.AppointmentStatusScheduled,
		Symptoms:         req.Symptoms,
		ConsultationType: consultation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// 3. Resolve the doctor, forwarding to the hospital system when needed
	if entities.IsHMISDoctorID(req.DoctorID) {
		if err := s.forwardToHospital(ctx, userID, appointment); err != nil {
			return nil, err
		}
	} else {
		doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
		if err != nil {
			return nil, err
		}
		appointment.DoctorName = doctor.Name
		appointment.DoctorSpecialty = doctor.Specialty
		appointment.Amount = doctor.ConsultationFee
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("doctor_id", appointment.DoctorID).
		Msg("Appointment booked")

	s.notifications.notify(ctx, NotificationInput{
		UserID:  userID,
		Title:   "Appointment Booked",
		Message: fmt.Sprintf("Your appointment has been booked for %s at %s", req.AppointmentDate, req.AppointmentTime),
		Type:    entities.NotificationAppointment,
		Extra: entities.JSONMap{
			extraAppointmentID: appointment.ID,
		},
	})

	return appointment, nil
}

func (s *AppointmentService) forwardToHospital(ctx context.Context, userID string, appointment *entities.Appointment) error {
	if s.hmis == nil {
		return apperrors.NewUpstreamUnreachableError("hospital system is not configured", providers.ErrHospitalSystemUnavailable)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	result, err := s.hmis.BookAppointment(ctx, entities.HMISBooking{
		PatientID:       user.ID,
		PatientName:     user.Name,
		PatientMobile:   user.MobileNumber,
		DoctorID:        appointment.DoctorID,
		AppointmentDate: appointment.AppointmentDate.Format(entities.DateLayout),
		AppointmentTime: appointment.AppointmentTime,
		Symptoms:        appointment.Symptoms,
	})
	if err != nil {
		return apperrors.NewUpstreamUnreachableError("failed to book with hospital system", err)
	}
	appointment.HMISAppointmentID = result.AppointmentID
	appointment.ConfirmationNumber = result.ConfirmationNumber
	return nil
}

// List returns the user's appointments, newest date first
func (s *AppointmentService) List(ctx context.Context, userID string, status entities.AppointmentStatus) ([]*entities.AppointmentView, error) {
	return s.repo.ListByUser(ctx, userID, repositories.AppointmentFilter{Status: status})
}
