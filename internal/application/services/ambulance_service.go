package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// AmbulanceBookingRequest asks an operator for transport
type AmbulanceBookingRequest struct {
	AmbulanceServiceID string `json:"ambulance_service_id"`
	PickupLocation     string `json:"pickup_location"`
	Destination        string `json:"destination"`
	EmergencyLevel     string `json:"emergency_level"`
	PatientCondition   string `json:"patient_condition"`
}

// AmbulanceService lists ambulance operators and records transport requests
type AmbulanceService struct {
	repo          repositories.AmbulanceRepository
	notifications *NotificationService
	clock         Clock
}

// NewAmbulanceService creates a new ambulance service
func NewAmbulanceService(repo repositories.AmbulanceRepository, notifications *NotificationService, clock Clock) *AmbulanceService {
	return &AmbulanceService{repo: repo, notifications: notifications, clock: clock}
}

// ListServices returns active operators, optionally of one service type
func (s *AmbulanceService) ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error) {
	serviceType = strings.TrimSpace(serviceType)
	if serviceType != "" && serviceType != entities.AmbulanceTypeEmergency && serviceType != entities.AmbulanceTypeNonEmergency {
		return nil, apperrors.NewValidationError("type must be emergency or non_emergency")
	}
	return s.repo.ListServices(ctx, serviceType)
}

// Book records a transport request with an active operator
func (s *AmbulanceService) Book(ctx context.Context, userID string, req AmbulanceBookingRequest) (*entities.AmbulanceBooking, error) {
	req.AmbulanceServiceID = strings.TrimSpace(req.AmbulanceServiceID)
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.AmbulanceServiceID == "" || req.PickupLocation == "" || req.Destination == "" {
		return nil, apperrors.NewValidationError("Required fields missing")
	}

	level := strings.ToLower(strings.TrimSpace(req.EmergencyLevel))
	if level == "" {
		level = entities.EmergencyLevelMedium
	}
	if !entities.ValidEmergencyLevel(level) {
		return nil, apperrors.NewValidationError("emergency_level must be high, medium or low")
	}

	operator, err := s.repo.GetService(ctx, req.AmbulanceServiceID)
	if err != nil {
		return nil, err
	}

	booking := &entities.AmbulanceBooking{
		ID:                 uuid.New().String(),
		UserID:             userID,
		AmbulanceServiceID: operator.ID,
		PickupLocation:     req.PickupLocation,
		Destination:        req.Destination,
		EmergencyLevel:     level,
		PatientCondition:   strings.TrimSpace(req.PatientCondition),
		Status:             entities.AmbulanceBookingStatusRequested,
		EstimatedAmount:    operator.BasePrice,
		CreatedAt:          s.clock.now(),
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)
	event := logger.Info()
	if level == entities.EmergencyLevelHigh {
		event = logger.Warn()
	}
	event.Str("booking_id", booking.ID).
		Str("ambulance_service_id", operator.ID).
		Str("emergency_level", level).
		Msg("Ambulance requested")

	s.notifications.notify(ctx, NotificationInput{
		UserID:  userID,
		Title:   "Ambulance Requested",
		Message: fmt.Sprintf("Your request has been sent to %s. For emergencies you can also call %s.", operator.ServiceName, operator.PhoneNumber),
		Type:    entities.NotificationAmbulance,
		Extra: entities.JSONMap{
			"booking_id": booking.ID,
		},
	})
	return booking, nil
}
