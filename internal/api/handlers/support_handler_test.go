package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/phr/backend/internal/api/handlers"
	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

func TestSupportHandler_ListAmbulanceServices(t *testing.T) {
	t.Run("filters by type", func(t *testing.T) {
		ambulances := new(MockAmbulanceService)
		handler := handlers.NewSupportHandler(ambulances, nil)
		ambulances.On("ListServices", mock.Anything, "emergency").Return([]*entities.AmbulanceService{{ID: "a1"}}, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/ambulance-services?type=emergency", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListAmbulanceServices(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["ambulance_services"], 1)
	})

	t.Run("returns 400 for an unknown type", func(t *testing.T) {
		ambulances := new(MockAmbulanceService)
		handler := handlers.NewSupportHandler(ambulances, nil)
		ambulances.On("ListServices", mock.Anything, "boat").Return(nil, apperrors.NewValidationError("type must be emergency or non_emergency"))

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/ambulance-services?type=boat", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListAmbulanceServices(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSupportHandler_BookAmbulance(t *testing.T) {
	t.Run("books and returns the booking id", func(t *testing.T) {
		// Arrange
		ambulances := new(MockAmbulanceService)
		handler := handlers.NewSupportHandler(ambulances, nil)
		expected := services.AmbulanceBookingRequest{
			AmbulanceServiceID: "a1", PickupLocation: "Home", Destination: "City General", EmergencyLevel: "high",
		}
		price := 1500.0
		ambulances.On("Book", mock.Anything, testUserID, expected).
			Return(&entities.AmbulanceBooking{ID: "b1", EstimatedAmount: &price}, nil)

		body := `{"ambulance_service_id":"a1","pickup_location":"Home","destination":"City General","emergency_level":"high"}`
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/ambulance-bookings", bytes.NewBufferString(body)), testUserID)
		w := httptest.NewRecorder()

		// Act
		handler.BookAmbulance(w, req)

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "b1", resp["booking_id"])
		assert.Equal(t, 1500.0, resp["estimated_amount"])
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		handler := handlers.NewSupportHandler(new(MockAmbulanceService), nil)

		req := asUser(httptest.NewRequest(http.MethodPost, "/api/ambulance-bookings", bytes.NewBufferString(`{`)), testUserID)
		w := httptest.NewRecorder()

		handler.BookAmbulance(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for an unknown operator", func(t *testing.T) {
		ambulances := new(MockAmbulanceService)
		handler := handlers.NewSupportHandler(ambulances, nil)
		ambulances.On("Book", mock.Anything, testUserID, mock.Anything).Return(nil, apperrors.NewNotFoundError("Ambulance service not found"))

		body := `{"ambulance_service_id":"zz","pickup_location":"Home","destination":"City General"}`
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/ambulance-bookings", bytes.NewBufferString(body)), testUserID)
		w := httptest.NewRecorder()

		handler.BookAmbulance(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSupportHandler_PeerMessages(t *testing.T) {
	t.Run("posts a message", func(t *testing.T) {
		peers := new(MockPeerSupportService)
		handler := handlers.NewSupportHandler(nil, peers)
		peers.On("Post", mock.Anything, testUserID, "You are not alone").Return(&entities.ChatMessage{ID: "m1"}, nil)

		req := asUser(httptest.NewRequest(http.MethodPost, "/api/chat/peer-support", bytes.NewBufferString(`{"message":"You are not alone"}`)), testUserID)
		w := httptest.NewRecorder()

		handler.PostPeerMessage(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "m1", decodeBody(t, w)["message_id"])
	})

	t.Run("returns 400 for an empty message", func(t *testing.T) {
		peers := new(MockPeerSupportService)
		handler := handlers.NewSupportHandler(nil, peers)
		peers.On("Post", mock.Anything, testUserID, "").Return(nil, apperrors.NewValidationError("Message is required"))

		req := asUser(httptest.NewRequest(http.MethodPost, "/api/chat/peer-support", bytes.NewBufferString(`{}`)), testUserID)
		w := httptest.NewRecorder()

		handler.PostPeerMessage(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists messages without sender ids", func(t *testing.T) {
		peers := new(MockPeerSupportService)
		handler := handlers.NewSupportHandler(nil, peers)
		peers.On("Recent", mock.Anything, 20).Return([]entities.PeerMessage{{ID: "m1", Message: "hi", Sender: "Anonymous"}}, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/chat/peer-support?limit=20", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListPeerMessages(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		messages := decodeBody(t, w)["messages"].([]interface{})
		first := messages[0].(map[string]interface{})
		assert.Equal(t, "Anonymous", first["sender"])
		assert.NotContains(t, first, "sender_id")
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		peers := new(MockPeerSupportService)
		handler := handlers.NewSupportHandler(nil, peers)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/chat/peer-support?limit=abc", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListPeerMessages(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		peers.AssertNotCalled(t, "Recent", mock.Anything, mock.Anything)
	})
}
