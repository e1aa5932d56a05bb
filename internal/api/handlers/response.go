package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/api/middleware"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// envelope is the top-level JSON object of every response
type envelope map[string]interface{}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithSuccess(w http.ResponseWriter, statusCode int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	respondWithJSON(w, statusCode, body)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, envelope{
		"success": false,
		"message": message,
	})
}

// respondWithAppError maps a service error onto a status code. Messages of
// internal errors are not echoed to the client.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForErrorType(appErr.Type)
	message := appErr.Message
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "internal server error"
	}
	respondWithError(w, status, message)
}

func statusForErrorType(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeInputRejected:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeExternal, apperrors.ErrorTypeUpstreamUnreachable:
		return http.StatusBadGateway
	case apperrors.ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeResponseMalformed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// statusForAnalysis picks the status of a degraded analysis result
func statusForAnalysis(status entities.AnalysisStatus) int {
	if status.Success {
		return http.StatusOK
	}
	switch status.FallbackKind {
	case entities.FallbackServiceUnavailable:
		return http.StatusServiceUnavailable
	case entities.FallbackResponseMalformed:
		return http.StatusUnprocessableEntity
	case entities.FallbackInputRejected:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// respondWithAnalysis writes a structured analysis under key, with the
// status its outcome maps to
func respondWithAnalysis(w http.ResponseWriter, key string, status entities.AnalysisStatus, payload interface{}) {
	code := statusForAnalysis(status)
	respondWithJSON(w, code, envelope{
		"success": status.Success,
		"message": status.Message,
		key:       payload,
	})
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func currentUser(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
