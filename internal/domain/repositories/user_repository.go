package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// UserRepository defines the interface for patient account operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByMobile retrieves a user by mobile number
	GetByMobile(ctx context.Context, mobile string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByAbhaID retrieves a user by ABHA ID
	GetByAbhaID(ctx context.Context, abhaID string) (*entities.User, error)

	// Update persists profile fields of an existing user
	Update(ctx context.Context, user *entities.User) error
}
