package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// CarePackageService serves care packages and subscriptions
type CarePackageService struct {
	repo          repositories.CarePackageRepository
	notifications *NotificationService
	clock         Clock
}

// NewCarePackageService creates a new care package service
func NewCarePackageService(repo repositories.CarePackageRepository, notifications *NotificationService, clock Clock) *CarePackageService {
	return &CarePackageService{repo: repo, notifications: notifications, clock: clock}
}

// List returns the active care packages
func (s *CarePackageService) List(ctx context.Context) ([]*entities.CarePackage, error) {
	return s.repo.ListActive(ctx)
}

// Apply subscribes the user to a package. A user holds at most one active
// subscription per package.
func (s *CarePackageService) Apply(ctx context.Context, userID, packageID string) (*entities.UserCarePackage, error) {
	pkg, err := s.repo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.HasActiveSubscription(ctx, userID, packageID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperrors.NewConflictError("You already have this care package")
	}

	now := s.clock.now()
	sub := &entities.UserCarePackage{
		ID:            uuid.New().String(),
		UserID:        userID,
		CarePackageID: pkg.ID,
		Status:        entities.UserCarePackageStatusActive,
		StartDate:     startOfDay(now),
		CreatedAt:     now,
	}
	if err := s.repo.Subscribe(ctx, sub); err != nil {
		return nil, err
	}

	s.notifications.notify(ctx, NotificationInput{
		UserID:  userID,
		Title:   "Care Package Enrolled",
		Message: fmt.Sprintf("You have been successfully enrolled in the %s care package.", pkg.Name),
		Type:    entities.NotificationCarePackage,
		Extra: entities.JSONMap{
			"package_name":      pkg.Name,
			"notification_type": "enrolled",
		},
	})
	return sub, nil
}
