package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// ProfileService defines the profile operations
type ProfileService interface {
	Get(ctx context.Context, userID string) (*entities.User, error)
	Update(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error)
	QRCode(ctx context.Context, userID string) (string, error)
	Share(ctx context.Context, userID, hospitalID string) (string, error)
	ListHospitals(ctx context.Context) []entities.Hospital
}

// ProfileHandler handles profile, QR and HMIS sharing requests
type ProfileHandler struct {
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), currentUser(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, envelope{"user": user})
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update entities.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.service.Update(r.Context(), currentUser(r), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, envelope{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// GetQRCode handles GET /api/profile/qr-code
func (h *ProfileHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	url, err := h.service.QRCode(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, envelope{
		"qr_code_url":  url,
		"profile_data": user.QRPayload(),
	})
}

// ShareProfile handles POST /api/profile/share
func (h *ProfileHandler) ShareProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HospitalID string `json:"hospital_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := h.service.Share(r.Context(), currentUser(r), req.HospitalID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, envelope{
		"message":     "Profile shared successfully",
		"share_token": token,
	})
}

// ListHospitals handles GET /api/hospitals
func (h *ProfileHandler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	respondWithSuccess(w, http.StatusOK, envelope{"hospitals": h.service.ListHospitals(r.Context())})
}
