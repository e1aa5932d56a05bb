package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// CarePackageRepository covers care packages and subscriptions to them
type CarePackageRepository interface {
	ListActive(ctx context.Context) ([]*entities.CarePackage, error)
	GetByID(ctx context.Context, id string) (*entities.CarePackage, error)

	// HasActiveSubscription reports whether the user already holds the package
	HasActiveSubscription(ctx context.Context, userID, packageID string) (bool, error)

	Subscribe(ctx context.Context, sub *entities.UserCarePackage) error
}
