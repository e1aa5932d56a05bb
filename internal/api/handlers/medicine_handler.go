package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// MedicineService defines the medicine tracker and prescription operations
type MedicineService interface {
	CreateTracker(ctx context.Context, userID string, req entities.MedicineTrackerRequest) (*entities.MedicineTracker, error)
	ListTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error)
	UploadPrescription(ctx context.Context, userID string, image entities.Upload) (*entities.Prescription, error)
	ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error)
}

// MedicineHandler handles medicine tracker and prescription requests
type MedicineHandler struct {
	service        MedicineService
	maxUploadBytes int64
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(service MedicineService, maxUploadBytes int64) *MedicineHandler {
	return &MedicineHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// CreateTracker handles POST /api/medicine-tracker
func (h *MedicineHandler) CreateTracker(w http.ResponseWriter, r *http.Request) {
	var req entities.MedicineTrackerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	tracker, err := h.service.CreateTracker(r.Context(), currentUser(r), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":    "Medicine added to tracker",
		"tracker_id": tracker.ID,
	})
}

// ListTrackers handles GET /api/medicine-tracker
func (h *MedicineHandler) ListTrackers(w http.ResponseWriter, r *http.Request) {
	trackers, err := h.service.ListTrackers(r.Context(), currentUser(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if trackers == nil {
		trackers = []*entities.MedicineTracker{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"medicine_trackers": trackers})
}

// UploadPrescription handles POST /api/prescriptions with a multipart
// "prescription_image" field. The prescription is stored even when the
// image could not be read; the analysis outcome travels with it.
func (h *MedicineHandler) UploadPrescription(w http.ResponseWriter, r *http.Request) {
	image, err := readUpload(w, r, "prescription_image", h.maxUploadBytes)
	if err != nil {
		respondWithUploadError(w, err, "No prescription image provided")
		return
	}

	prescription, err := h.service.UploadPrescription(r.Context(), currentUser(r), image)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":         "Prescription uploaded successfully",
		"prescription_id": prescription.ID,
		"prescription":    prescription,
	})
}

// ListPrescriptions handles GET /api/prescriptions
func (h *MedicineHandler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.service.ListPrescriptions(r.Context(), currentUser(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if prescriptions == nil {
		prescriptions = []*entities.Prescription{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"prescriptions": prescriptions})
}
