package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// AmbulanceService defines the ambulance directory and booking operations
type AmbulanceService interface {
	ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error)
	Book(ctx context.Context, userID string, req services.AmbulanceBookingRequest) (*entities.AmbulanceBooking, error)
}

// PeerSupportService defines the anonymous peer support room
type PeerSupportService interface {
	Post(ctx context.Context, userID, message string) (*entities.ChatMessage, error)
	Recent(ctx context.Context, limit int) ([]entities.PeerMessage, error)
}

// SupportHandler handles ambulance and peer support requests
type SupportHandler struct {
	ambulances AmbulanceService
	peers      PeerSupportService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(ambulances AmbulanceService, peers PeerSupportService) *SupportHandler {
	return &SupportHandler{ambulances: ambulances, peers: peers}
}

// ListAmbulanceServices handles GET /api/ambulance-services?type=
func (h *SupportHandler) ListAmbulanceServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.ambulances.ListServices(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if list == nil {
		list = []*entities.AmbulanceService{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"ambulance_services": list})
}

// BookAmbulance handles POST /api/ambulance-bookings
func (h *SupportHandler) BookAmbulance(w http.ResponseWriter, r *http.Request) {
	var req services.AmbulanceBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.ambulances.Book(r.Context(), currentUser(r), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":          "Ambulance booking requested",
		"booking_id":       booking.ID,
		"estimated_amount": booking.EstimatedAmount,
	})
}

// PostPeerMessage handles POST /api/chat/peer-support
func (h *SupportHandler) PostPeerMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	msg, err := h.peers.Post(r.Context(), currentUser(r), req.Message)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":    "Message sent",
		"message_id": msg.ID,
	})
}

// ListPeerMessages handles GET /api/chat/peer-support?limit=
func (h *SupportHandler) ListPeerMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := h.peers.Recent(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if messages == nil {
		messages = []entities.PeerMessage{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"messages": messages})
}
