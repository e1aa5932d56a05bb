package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// LabBookingRequest selects tests to book
type LabBookingRequest struct {
	TestIDs  []string `json:"test_ids"`
	DoctorID string   `json:"doctor_id"`
}

// LabService serves the lab test catalogue and bookings
type LabService struct {
	repo          repositories.LabRepository
	notifications *NotificationService
	clock         Clock
}

// NewLabService creates a new lab service
func NewLabService(repo repositories.LabRepository, notifications *NotificationService, clock Clock) *LabService {
	return &LabService{repo: repo, notifications: notifications, clock: clock}
}

// ListTests returns active tests, optionally of one category
func (s *LabService) ListTests(ctx context.Context, category string) ([]*entities.LabTest, error) {
	return s.repo.ListTests(ctx, category)
}

// Book books the selected tests. The total is the sum of the known prices.
func (s *LabService) Book(ctx context.Context, userID string, req LabBookingRequest) (*entities.LabBooking, error) {
	if len(req.TestIDs) == 0 {
		return nil, apperrors.NewValidationError("At least one test must be selected")
	}

	tests, err := s.repo.GetTestsByIDs(ctx, req.TestIDs)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, apperrors.NewNotFoundError("No lab tests found")
	}

	var total float64
	for _, test := range tests {
		if test.Price != nil {
			total += *test.Price
		}
	}

	booking := &entities.LabBooking{
		ID:          uuid.New().String(),
		UserID:      userID,
		DoctorID:    req.DoctorID,
		TestIDs:     req.TestIDs,
		TotalAmount: total,
		Status:      entities.LabBookingStatusBooked,
		CreatedAt:   s.clock.now(),
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.notifications.notify(ctx, NotificationInput{
		UserID:  userID,
		Title:   "Lab Tests Scheduled",
		Message: "Your lab tests have been scheduled. You will be notified when results are available.",
		Type:    entities.NotificationLabResult,
		Extra: entities.JSONMap{
			"booking_id": booking.ID,
		},
	})
	return booking, nil
}
