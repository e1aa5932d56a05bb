package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// DoctorRepository defines the interface for locally registered doctors
type DoctorRepository interface {
	// Search returns active doctors matching the filter, ordered by rating
	Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error)

	// GetByID retrieves an active doctor by ID
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
}
