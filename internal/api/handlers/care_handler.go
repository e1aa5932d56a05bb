package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// LabService defines the lab catalogue and booking operations
type LabService interface {
	ListTests(ctx context.Context, category string) ([]*entities.LabTest, error)
	Book(ctx context.Context, userID string, req services.LabBookingRequest) (*entities.LabBooking, error)
}

// CarePackageService defines the care package operations
type CarePackageService interface {
	List(ctx context.Context) ([]*entities.CarePackage, error)
	Apply(ctx context.Context, userID, packageID string) (*entities.UserCarePackage, error)
}

// InsightsService generates personalised health insights
type InsightsService interface {
	Generate(ctx context.Context, userID string) (*entities.HealthInsights, error)
}

// CareHandler handles lab tests, care packages and health insights
type CareHandler struct {
	labs     LabService
	packages CarePackageService
	insights InsightsService
}

// NewCareHandler creates a new care handler
func NewCareHandler(labs LabService, packages CarePackageService, insights InsightsService) *CareHandler {
	return &CareHandler{labs: labs, packages: packages, insights: insights}
}

// ListLabTests handles GET /api/lab-tests?category=
func (h *CareHandler) ListLabTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.labs.ListTests(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if tests == nil {
		tests = []*entities.LabTest{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"lab_tests": tests})
}

// BookLabTests handles POST /api/lab-bookings
func (h *CareHandler) BookLabTests(w http.ResponseWriter, r *http.Request) {
	var req services.LabBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.labs.Book(r.Context(), currentUser(r), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":      "Lab tests booked successfully",
		"booking_id":   booking.ID,
		"total_amount": booking.TotalAmount,
	})
}

// ListCarePackages handles GET /api/care-packages
func (h *CareHandler) ListCarePackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.packages.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if packages == nil {
		packages = []*entities.CarePackage{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"care_packages": packages})
}

// ApplyCarePackage handles POST /api/care-packages/{id}/apply
func (h *CareHandler) ApplyCarePackage(w http.ResponseWriter, r *http.Request) {
	packageID := r.PathValue("id")
	if packageID == "" {
		respondWithError(w, http.StatusBadRequest, "care package ID is required")
		return
	}

	subscription, err := h.packages.Apply(r.Context(), currentUser(r), packageID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":         "Care package applied successfully",
		"user_package_id": subscription.ID,
	})
}

// GetHealthInsights handles GET /api/health-insights
func (h *CareHandler) GetHealthInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.insights.Generate(r.Context(), currentUser(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithAnalysis(w, "insights", insights.AnalysisStatus, insights)
}
