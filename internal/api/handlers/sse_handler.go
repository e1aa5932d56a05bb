package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
)

const sseHeartbeatInterval = 30 * time.Second

// SSEHandler streams a patient's health events over Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   map[string]int // user ID -> open streams
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: sseHeartbeatInterval,
		clients:   make(map[string]int),
	}
}

// StreamNotifications handles GET /api/notifications/stream
func (h *SSEHandler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event streaming is not enabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := observability.LoggerFromContext(r.Context())
	ctx := r.Context()

	eventChan, err := h.eventBus.Subscribe(ctx, providers.GetUserChannel(userID))
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to subscribe to user channel")
		respondWithError(w, http.StatusServiceUnavailable, "event streaming is unavailable")
		return
	}

	h.registerClient(userID)
	defer h.unregisterClient(userID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(ctx, w, "connected", map[string]interface{}{
		"user_id":   userID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("user_id", userID).Msg("client disconnected from notification stream")
			return
		case <-ticker.C:
			h.sendEvent(ctx, w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil || event.UserID != userID {
				continue
			}
			h.sendEvent(ctx, w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// registerClient counts an open stream for a user
func (h *SSEHandler) registerClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID]++
}

// unregisterClient releases an open stream for a user
func (h *SSEHandler) unregisterClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] <= 1 {
		delete(h.clients, userID)
		return
	}
	h.clients[userID]--
}

// sendEvent writes one SSE frame
func (h *SSEHandler) sendEvent(ctx context.Context, w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to marshal event data")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of open streams
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}

