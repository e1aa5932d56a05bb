package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// MedicineRepository covers trackers and prescriptions
type MedicineRepository interface {
	CreateTracker(ctx context.Context, tracker *entities.MedicineTracker) error
	ListActiveTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error)

	// ListAllActiveTrackers returns active trackers across users for reminders
	ListAllActiveTrackers(ctx context.Context) ([]*entities.MedicineTracker, error)

	CreatePrescription(ctx context.Context, p *entities.Prescription) error
	UpdatePrescription(ctx context.Context, p *entities.Prescription) error
	ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error)
}
