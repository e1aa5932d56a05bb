package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/phr/backend/internal/api/handlers"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(token string) (string, error) {
	if token == "good" {
		return "user-1", nil
	}
	return "", errors.New("bad token")
}

func newTestRouter() http.Handler {
	h := Handlers{
		Auth:         handlers.NewAuthHandler(nil),
		Profile:      handlers.NewProfileHandler(nil),
		Doctor:       handlers.NewDoctorHandler(nil),
		Appointment:  handlers.NewAppointmentHandler(nil),
		Assessment:   handlers.NewAssessmentHandler(nil, 1<<20),
		Record:       handlers.NewRecordHandler(nil, 1<<20),
		Medicine:     handlers.NewMedicineHandler(nil, 1<<20),
		Care:         handlers.NewCareHandler(nil, nil, nil),
		Notification: handlers.NewNotificationHandler(nil),
		Support:      handlers.NewSupportHandler(nil, nil),
	}
	return NewRouter(h, staticAuthenticator{}, "hmis-key", nil, []string{"https://app.example.com"}, nil).SetupRoutes()
}

func TestRouter_SetupRoutes(t *testing.T) {
	router := newTestRouter()

	t.Run("health is public", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("private routes require a bearer token", func(t *testing.T) {
		for _, path := range []string{"/api/profile", "/api/appointments", "/api/symptoms", "/api/notifications", "/api/ambulance-services", "/api/chat/peer-support"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid token")
	})

	t.Run("hospital push requires the API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/hmis/documents", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid API key")
	})

	t.Run("preflight is answered before auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown route is not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
