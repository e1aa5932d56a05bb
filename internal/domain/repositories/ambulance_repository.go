package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// AmbulanceRepository covers ambulance operators and transport requests
type AmbulanceRepository interface {
	// ListServices returns active operators, optionally of one service type
	ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error)

	// GetService returns an active operator
	GetService(ctx context.Context, id string) (*entities.AmbulanceService, error)

	CreateBooking(ctx context.Context, booking *entities.AmbulanceBooking) error
}
