package providers

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to health events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.HealthEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.HealthEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants
const (
	// EventChannelNotifications carries every notification event
	EventChannelNotifications = "phr:notifications"

	// EventChannelUserPrefix is the prefix for per-user channels
	EventChannelUserPrefix = "phr:user:"
)

// GetUserChannel returns the channel name for a specific user
func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}
