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

const prescriptionsDir = "prescriptions"

// MedicineService manages medicine trackers and prescriptions
type MedicineService struct {
	repo          repositories.MedicineRepository
	store         providers.DocumentStore
	analyzer      Analyzer
	notifications *NotificationService
	clock         Clock
}

// NewMedicineService creates a new medicine service
func NewMedicineService(
	repo repositories.MedicineRepository,
	store providers.DocumentStore,
	analyzer Analyzer,
	notifications *NotificationService,
	clock Clock,
) *MedicineService {
	return &MedicineService{
		repo:          repo,
		store:         store,
		analyzer:      analyzer,
		notifications: notifications,
		clock:         clock,
	}
}

// CreateTracker adds a medicine schedule and announces each reminder time
func (s *MedicineService) CreateTracker(ctx context.Context, userID string, req entities.MedicineTrackerRequest) (*entities.MedicineTracker, error) {
	if strings.TrimSpace(req.MedicineName) == "" || req.Dosage == "" || req.Frequency == "" || len(req.Timing) == 0 || req.StartDate == "" {
		return nil, apperrors.NewValidationError("Required fields missing")
	}

	start, err := time.Parse(entities.DateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date format")
	}
	var end *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(entities.DateLayout, req.EndDate)
		if err != nil {
			return nil, apperrors.NewValidationError("Invalid date format")
		}
		if parsed.Before(start) {
			return nil, apperrors.NewValidationError("End date must not be before start date")
		}
		end = &parsed
	}
	for _, timing := range req.Timing {
		if _, err := time.Parse(entities.TimeLayout, timing); err != nil {
			return nil, apperrors.NewValidationError("Invalid time format. Use HH:MM")
		}
	}

	tracker := &entities.MedicineTracker{
		ID:           uuid.New().String(),
		UserID:       userID,
		MedicineName: strings.TrimSpace(req.MedicineName),
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		Timing:       req.Timing,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
		CreatedAt:    s.clock.now(),
	}
	if err := s.repo.CreateTracker(ctx, tracker); err != nil {
		return nil, err
	}

	for _, timing := range tracker.Timing {
		s.notifications.notify(ctx, NotificationInput{
			UserID:  userID,
			Title:   "Medicine Reminder",
			Message: fmt.Sprintf("Time to take %s - %s", tracker.MedicineName, tracker.Dosage),
			Type:    entities.NotificationMedicineReminder,
			Extra: entities.JSONMap{
				extraMedicineTrackerID: tracker.ID,
				"time_slot":            timing,
			},
		})
	}
	return tracker, nil
}

// ListTrackers returns the user's active trackers
func (s *MedicineService) ListTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error) {
	return s.repo.ListActiveTrackers(ctx, userID)
}

// UploadPrescription stores a prescription image and reads it. The
// prescription is kept unanalyzed when the image cannot be read.
func (s *MedicineService) UploadPrescription(ctx context.Context, userID string, image entities.Upload) (*entities.Prescription, error) {
	if image.Filename == "" || len(image.Data) == 0 {
		return nil, apperrors.NewValidationError("No prescription image provided")
	}

	key, err := storeUpload(ctx, s.store, userID+"/"+prescriptionsDir, image)
	if err != nil {
		return nil, err
	}

	prescription := &entities.Prescription{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageKey:  key,
		Medicines: entities.PrescribedMedicines{},
		CreatedAt: s.clock.now(),
	}
	if err := s.repo.CreatePrescription(ctx, prescription); err != nil {
		return nil, err
	}

	analysis := s.analyzer.AnalyzePrescription(ctx, attachmentOf(image))
	prescription.Analysis = analysis
	if !analysis.Success || analysis.PrescriptionData == nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("prescription_id", prescription.ID).
			Str("fallback_kind", string(analysis.FallbackKind)).
			Msg("Prescription stored without analysis")
		return prescription, nil
	}

	data := analysis.PrescriptionData
	prescription.Medicines = data.Medicines
	prescription.DoctorName = data.DoctorName
	if _, err := time.Parse(entities.DateLayout, data.Date); err == nil {
		prescription.PrescriptionDate = data.Date
	}
	prescription.Analyzed = true
	if err := s.repo.UpdatePrescription(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// ListPrescriptions returns the user's prescriptions
func (s *MedicineService) ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error) {
	return s.repo.ListPrescriptions(ctx, userID)
}
