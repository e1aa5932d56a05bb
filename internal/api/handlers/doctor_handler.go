package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// DoctorService defines the doctor directory operations
type DoctorService interface {
	Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error)
	GetAvailability(ctx context.Context, doctorID string, date time.Time) (*entities.AvailabilitySet, error)
}

// DoctorHandler handles doctor search and availability requests
type DoctorHandler struct {
	service DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(service DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// SearchDoctors handles GET /api/doctors
func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := entities.DoctorFilter{
		Specialty: query.Get("specialty"),
		Name:      query.Get("name"),
	}

	doctors, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}

	respondWithSuccess(w, http.StatusOK, envelope{"doctors": doctors})
}

// GetAvailability handles GET /api/doctors/{id}/availability?date=YYYY-MM-DD
func (h *DoctorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "Date is required")
		return
	}
	date, err := time.Parse(entities.DateLayout, dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	availability, err := h.service.GetAvailability(r.Context(), doctorID, date)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, envelope{
		"doctor_id":       availability.DoctorID,
		"date":            availability.Date,
		"available_slots": availability.AvailableSlots,
	})
}
