package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// LabRepository covers lab tests and bookings
type LabRepository interface {
	// ListTests returns active tests, optionally by category
	ListTests(ctx context.Context, category string) ([]*entities.LabTest, error)

	// GetTestsByIDs returns the active tests among ids
	GetTestsByIDs(ctx context.Context, ids []string) ([]*entities.LabTest, error)

	CreateBooking(ctx context.Context, booking *entities.LabBooking) error
}
