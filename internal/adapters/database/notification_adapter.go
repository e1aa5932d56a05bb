package database

import (
	"context"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const notificationSelect = `SELECT id, user_id, title, message, notification_type, is_read,
	scheduled_for, extra_data, created_at FROM notifications`

// NotificationAdapter implements the NotificationRepository interface on sqlx
type NotificationAdapter struct {
	client *postgres.Client
}

// NewNotificationAdapter creates a new notification adapter
func NewNotificationAdapter(client *postgres.Client) repositories.NotificationRepository {
	return &NotificationAdapter{client: client}
}

// Create stores a notification
func (a *NotificationAdapter) Create(ctx context.Context, n *entities.Notification) error {
	_, err := a.client.DBX().NamedExecContext(ctx, `INSERT INTO notifications
		(id, user_id, title, message, notification_type, is_read, scheduled_for, extra_data, created_at)
		VALUES (:id, :user_id, :title, :message, :notification_type, :is_read, :scheduled_for, :extra_data, :created_at)`, n)
	if err != nil {
		return apperrors.NewInternalError("failed to create notification", err)
	}
	return nil
}

// ListByUser returns the user's notifications, newest first
func (a *NotificationAdapter) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entities.Notification, error) {
	query := notificationSelect + ` WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`
	if limit <= 0 {
		limit = 50
	}

	notifications := make([]*entities.Notification, 0)
	if err := a.client.DBX().SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, apperrors.NewInternalError("failed to list notifications", err)
	}
	return notifications, nil
}

// MarkRead flags a notification owned by the user as read
func (a *NotificationAdapter) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	result, err := a.client.DBX().ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, apperrors.NewInternalError("failed to mark notification read", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return affected > 0, nil
}

// ExistsForExtra reports whether a notification of the type carrying extra_data[key] = value
// was created since the given instant
func (a *NotificationAdapter) ExistsForExtra(ctx context.Context, userID string, notificationType entities.NotificationType, key, value string, since time.Time) (bool, error) {
	var exists bool
	err := a.client.DBX().GetContext(ctx, &exists, `SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND notification_type = $2 AND extra_data->>$3 = $4 AND created_at >= $5)`,
		userID, notificationType, key, value, since)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check notification", err)
	}
	return exists, nil
}

// DeleteOlderThan removes notifications created before cutoff
func (a *NotificationAdapter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := a.client.DBX().ExecContext(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete notifications", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return deleted, nil
}
