package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// AppointmentService defines the interface for appointment operations
type AppointmentService interface {
	Book(ctx context.Context, userID string, req entities.AppointmentRequest) (*entities.Appointment, error)
	List(ctx context.Context, userID string, status entities.AppointmentStatus) ([]*entities.AppointmentView, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

// BookAppointment handles POST /api/appointments
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.service.Book(r.Context(), currentUser(r), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":     "Appointment booked successfully",
		"appointment": appointment,
	})
}

// ListAppointments handles GET /api/appointments?status=
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	status := entities.AppointmentStatus(r.URL.Query().Get("status"))

	appointments, err := h.service.List(r.Context(), currentUser(r), status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []*entities.AppointmentView{}
	}

	respondWithSuccess(w, http.StatusOK, envelope{"appointments": appointments})
}
