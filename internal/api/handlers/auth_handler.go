package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/application/services"
)

// AuthService defines the login operations
type AuthService interface {
	RequestOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, code string) (*services.AuthResult, error)
	LoginWithEmail(ctx context.Context, email, password string) (*services.AuthResult, error)
	LoginWithABHA(ctx context.Context, abhaID string) (*services.AuthResult, error)
}

// AuthHandler handles the unauthenticated login routes
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RequestOTP handles POST /api/auth/request-otp
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileNumber string `json:"mobile_number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.MobileNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Mobile number is required")
		return
	}

	if err := h.service.RequestOTP(r.Context(), req.MobileNumber); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, envelope{"message": "OTP sent successfully"})
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileNumber string `json:"mobile_number"`
		OTP          string `json:"otp_code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.MobileNumber == "" || req.OTP == "" {
		respondWithError(w, http.StatusBadRequest, "Mobile number and OTP are required")
		return
	}

	result, err := h.service.VerifyOTP(r.Context(), req.MobileNumber, req.OTP)
	h.respondWithLogin(w, r, result, err)
}

// LoginWithEmail handles POST /api/auth/login-email
func (h *AuthHandler) LoginWithEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.service.LoginWithEmail(r.Context(), req.Email, req.Password)
	h.respondWithLogin(w, r, result, err)
}

// LoginWithABHA handles POST /api/auth/login-abha
func (h *AuthHandler) LoginWithABHA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ABHAID string `json:"abha_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.ABHAID == "" {
		respondWithError(w, http.StatusBadRequest, "ABHA ID is required")
		return
	}

	result, err := h.service.LoginWithABHA(r.Context(), req.ABHAID)
	h.respondWithLogin(w, r, result, err)
}

func (h *AuthHandler) respondWithLogin(w http.ResponseWriter, r *http.Request, result *services.AuthResult, err error) {
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, envelope{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}
