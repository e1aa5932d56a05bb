package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/phr/backend/internal/api/handlers"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

func TestDoctorHandler_SearchDoctors(t *testing.T) {
	t.Run("passes filters and returns merged doctors", func(t *testing.T) {
		// Arrange
		service := new(MockDoctorService)
		handler := handlers.NewDoctorHandler(service)
		service.On("Search", mock.Anything, entities.DoctorFilter{Specialty: "cardio", Name: "rao"}).Return([]*entities.Doctor{
			{ID: "d1", Name: "Dr. Rao", Source: entities.DoctorSourceLocal},
			{ID: "hmis_42", Name: "Dr. Rao K", Source: entities.DoctorSourceHMIS},
		}, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/doctors?specialty=cardio&name=rao", nil), testUserID)
		w := httptest.NewRecorder()

		// Act
		handler.SearchDoctors(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		doctors := decodeBody(t, w)["doctors"].([]interface{})
		assert.Len(t, doctors, 2)
		assert.Equal(t, "hmis_42", doctors[1].(map[string]interface{})["id"])
	})

	t.Run("renders an empty list instead of null", func(t *testing.T) {
		service := new(MockDoctorService)
		handler := handlers.NewDoctorHandler(service)
		service.On("Search", mock.Anything, entities.DoctorFilter{}).Return(nil, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/doctors", nil), testUserID)
		w := httptest.NewRecorder()

		handler.SearchDoctors(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"doctors":[]`)
	})
}

func TestDoctorHandler_GetAvailability(t *testing.T) {
	t.Run("returns free slots for the date", func(t *testing.T) {
		// Arrange
		service := new(MockDoctorService)
		handler := handlers.NewDoctorHandler(service)
		date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
		service.On("GetAvailability", mock.Anything, "d1", date).Return(&entities.AvailabilitySet{
			DoctorID:       "d1",
			Date:           "2024-05-06",
			AvailableSlots: []string{"09:00", "10:00"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/doctors/d1/availability?date=2024-05-06", nil)
		req.SetPathValue("id", "d1")
		w := httptest.NewRecorder()

		// Act
		handler.GetAvailability(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []interface{}{"09:00", "10:00"}, decodeBody(t, w)["available_slots"])
	})

	t.Run("requires a date", func(t *testing.T) {
		handler := handlers.NewDoctorHandler(new(MockDoctorService))

		req := httptest.NewRequest(http.MethodGet, "/api/doctors/d1/availability", nil)
		req.SetPathValue("id", "d1")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Date is required", decodeBody(t, w)["message"])
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		handler := handlers.NewDoctorHandler(new(MockDoctorService))

		req := httptest.NewRequest(http.MethodGet, "/api/doctors/d1/availability?date=06-05-2024", nil)
		req.SetPathValue("id", "d1")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps an unreachable hospital system to 502", func(t *testing.T) {
		service := new(MockDoctorService)
		handler := handlers.NewDoctorHandler(service)
		service.On("GetAvailability", mock.Anything, "hmis_42", mock.Anything).
			Return(nil, apperrors.NewUpstreamUnreachableError("Failed to fetch availability", errors.New("timeout")))

		req := httptest.NewRequest(http.MethodGet, "/api/doctors/hmis_42/availability?date=2024-05-06", nil)
		req.SetPathValue("id", "hmis_42")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
