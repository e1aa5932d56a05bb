package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// ChatRepository stores room messages
type ChatRepository interface {
	Create(ctx context.Context, msg *entities.ChatMessage) error

	// ListRoom returns the newest limit messages of a room, newest first
	ListRoom(ctx context.Context, roomID string, limit int) ([]*entities.ChatMessage, error)
}
