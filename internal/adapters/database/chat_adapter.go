package database

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// ChatAdapter implements the ChatRepository interface on sqlx
type ChatAdapter struct {
	client *postgres.Client
}

// NewChatAdapter creates a new chat adapter
func NewChatAdapter(client *postgres.Client) repositories.ChatRepository {
	return &ChatAdapter{client: client}
}

// Create stores a message
func (a *ChatAdapter) Create(ctx context.Context, msg *entities.ChatMessage) error {
	_, err := a.client.DBX().NamedExecContext(ctx, `INSERT INTO chat_messages
		(id, sender_id, room_id, message, message_type, is_anonymous, created_at)
		VALUES (:id, :sender_id, :room_id, :message, :message_type, :is_anonymous, :created_at)`, msg)
	if err != nil {
		return apperrors.NewInternalError("failed to store chat message", err)
	}
	return nil
}

// ListRoom returns the newest messages of a room, newest first
func (a *ChatAdapter) ListRoom(ctx context.Context, roomID string, limit int) ([]*entities.ChatMessage, error) {
	messages := make([]*entities.ChatMessage, 0)
	err := a.client.DBX().SelectContext(ctx, &messages, `SELECT id, sender_id, room_id, message,
		message_type, is_anonymous, created_at FROM chat_messages
		WHERE room_id = $1 ORDER BY created_at DESC LIMIT $2`, roomID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list chat messages", err)
	}
	return messages, nil
}
