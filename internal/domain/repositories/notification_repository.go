package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// NotificationRepository defines the interface for notification storage
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error

	// ListByUser returns notifications newest first
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entities.Notification, error)

	// MarkRead marks a user's notification read. It returns false when no row matched.
	MarkRead(ctx context.Context, userID, id string) (bool, error)

	// ExistsForExtra reports whether a notification of the type carries
	// extra_data[key] == value and was created on or after since
	ExistsForExtra(ctx context.Context, userID string, notificationType entities.NotificationType, key, value string, since time.Time) (bool, error)

	// DeleteOlderThan removes notifications created before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
