package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// NotificationService defines the in-app notification operations
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*entities.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotifications handles GET /api/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	notifications, err := h.service.List(r.Context(), currentUser(r), unreadOnly)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []*entities.Notification{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"notifications": notifications})
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "notification ID is required")
		return
	}

	if err := h.service.MarkRead(r.Context(), currentUser(r), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, envelope{"message": "Notification marked as read"})
}
