package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const (
	defaultPeerMessageLimit = 50
	maxPeerMessageLimit     = 200
	maxPeerMessageLength    = 2000
)

// PeerSupportService runs the anonymous peer support room
type PeerSupportService struct {
	repo  repositories.ChatRepository
	clock Clock
}

// NewPeerSupportService creates a new peer support service
func NewPeerSupportService(repo repositories.ChatRepository, clock Clock) *PeerSupportService {
	return &PeerSupportService{repo: repo, clock: clock}
}

// Post stores an anonymous message from userID
func (s *PeerSupportService) Post(ctx context.Context, userID, message string) (*entities.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(message) > maxPeerMessageLength {
		return nil, apperrors.NewValidationError("Message is too long")
	}

	msg := &entities.ChatMessage{
		ID:          uuid.New().String(),
		SenderID:    userID,
		RoomID:      entities.PeerSupportRoom,
		Message:     message,
		MessageType: entities.ChatMessageTypeText,
		IsAnonymous: true,
		CreatedAt:   s.clock.now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns the latest limit messages, oldest first. Non-positive limits
// use the default; large ones are capped.
func (s *PeerSupportService) Recent(ctx context.Context, limit int) ([]entities.PeerMessage, error) {
	if limit <= 0 {
		limit = defaultPeerMessageLimit
	}
	if limit > maxPeerMessageLimit {
		limit = maxPeerMessageLimit
	}

	newest, err := s.repo.ListRoom(ctx, entities.PeerSupportRoom, limit)
	if err != nil {
		return nil, err
	}

	views := make([]entities.PeerMessage, len(newest))
	for i, msg := range newest {
		views[len(newest)-1-i] = msg.View()
	}
	return views, nil
}
