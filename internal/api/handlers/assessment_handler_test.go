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
)

const testMaxUpload = 1 << 20

func TestAssessmentHandler_CreateAssessment(t *testing.T) {
	t.Run("persists and returns the analysis", func(t *testing.T) {
		// Arrange
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("Assess", mock.Anything, testUserID, mock.MatchedBy(func(in entities.SymptomInput) bool {
			return len(in.Symptoms) == 2 && in.Questionnaire["duration"] == "3 days"
		})).Return(&entities.SymptomAssessment{
			ID:                   "as1",
			RecommendedSpecialty: "Pulmonology",
			SeverityScore:        6,
			AIAnalysis: &entities.SymptomAnalysis{
				AnalysisStatus:       entities.AnalysisStatus{Success: true},
				RecommendedSpecialty: "Pulmonology",
				SeverityScore:        6,
			},
		}, nil)

		body := `{"symptoms":["cough","fever"],"questionnaire_responses":{"duration":"3 days"}}`
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/symptom-assessment", bytes.NewBufferString(body)), testUserID)
		w := httptest.NewRecorder()

		// Act
		handler.CreateAssessment(w, req)

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "as1", resp["assessment_id"])
		assert.Equal(t, "Pulmonology", resp["recommended_specialty"])
		assert.EqualValues(t, 6, resp["severity_score"])
	})

	t.Run("a degraded analysis is still returned with its fallback flags", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("Assess", mock.Anything, testUserID, mock.Anything).Return(&entities.SymptomAssessment{
			ID:                   "as2",
			RecommendedSpecialty: "General Medicine",
			SeverityScore:        5,
			AIAnalysis: &entities.SymptomAnalysis{
				AnalysisStatus: entities.AnalysisStatus{Fallback: true, FallbackKind: entities.FallbackServiceUnavailable},
			},
		}, nil)

		req := asUser(httptest.NewRequest(http.MethodPost, "/api/symptom-assessment", bytes.NewBufferString(`{"symptoms":["headache"]}`)), testUserID)
		w := httptest.NewRecorder()

		handler.CreateAssessment(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		analysis := decodeBody(t, w)["ai_analysis"].(map[string]interface{})
		assert.Equal(t, true, analysis["fallback"])
		assert.Equal(t, "service_unavailable", analysis["fallback_kind"])
	})
}

func TestAssessmentHandler_CreateAudioAssessment(t *testing.T) {
	t.Run("transcribes and analyzes the recording", func(t *testing.T) {
		// Arrange
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("AssessAudio", mock.Anything, testUserID, mock.MatchedBy(func(u entities.Upload) bool {
			return u.Filename == "note.wav" && string(u.Data) == "RIFF"
		})).Return(&services.AudioAssessmentResult{
			Transcription: &entities.Transcription{AnalysisStatus: entities.AnalysisStatus{Success: true}, Transcription: "I have a cough"},
			Assessment:    &entities.SymptomAssessment{ID: "as3", RecommendedSpecialty: "Pulmonology"},
		}, nil)

		req := asUser(newMultipartRequest(t, "/api/symptom-assessment/audio", "audio", "note.wav", []byte("RIFF"), nil), testUserID)
		w := httptest.NewRecorder()

		// Act
		handler.CreateAudioAssessment(w, req)

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "I have a cough", resp["transcription"])
		assert.Equal(t, "as3", resp["assessment_id"])
	})

	t.Run("maps an unconfigured model to 503", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("AssessAudio", mock.Anything, testUserID, mock.Anything).Return(&services.AudioAssessmentResult{
			Transcription: &entities.Transcription{AnalysisStatus: entities.AnalysisStatus{
				Fallback:     true,
				FallbackKind: entities.FallbackServiceUnavailable,
				Message:      "AI service not available",
			}},
		}, nil)

		req := asUser(newMultipartRequest(t, "/api/symptom-assessment/audio", "audio", "note.wav", []byte("RIFF"), nil), testUserID)
		w := httptest.NewRecorder()

		handler.CreateAudioAssessment(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "AI service not available", resp["message"])
	})

	t.Run("requires an audio file", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)

		req := asUser(newMultipartRequest(t, "/api/symptom-assessment/audio", "", "", nil, map[string]string{"x": "y"}), testUserID)
		w := httptest.NewRecorder()

		handler.CreateAudioAssessment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No audio file provided", decodeBody(t, w)["message"])
	})

	t.Run("rejects an oversized upload", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, 1024)

		req := asUser(newMultipartRequest(t, "/api/symptom-assessment/audio", "audio", "note.wav", make([]byte, 4096), nil), testUserID)
		w := httptest.NewRecorder()

		handler.CreateAudioAssessment(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		service.AssertNotCalled(t, "AssessAudio", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAssessmentHandler_ListSymptomsAndHistory(t *testing.T) {
	t.Run("filters the catalogue by category", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("ListSymptoms", mock.Anything, "respiratory").Return([]*entities.Symptom{{ID: "s1", Name: "Cough"}}, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/symptoms?category=respiratory", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListSymptoms(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["symptoms"], 1)
	})

	t.Run("uses the default history limit", func(t *testing.T) {
		service := new(MockAssessmentService)
		handler := handlers.NewAssessmentHandler(service, testMaxUpload)
		service.On("History", mock.Anything, testUserID, 20).Return([]*entities.SymptomAssessment{}, nil)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/symptom-assessment", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListAssessments(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		handler := handlers.NewAssessmentHandler(new(MockAssessmentService), testMaxUpload)

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/symptom-assessment?limit=-1", nil), testUserID)
		w := httptest.NewRecorder()

		handler.ListAssessments(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
