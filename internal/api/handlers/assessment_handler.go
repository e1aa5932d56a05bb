package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

const defaultHistoryLimit = 20

// AssessmentService defines the symptom triage operations
type AssessmentService interface {
	ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error)
	Assess(ctx context.Context, userID string, in entities.SymptomInput) (*entities.SymptomAssessment, error)
	AssessAudio(ctx context.Context, userID string, audio entities.Upload) (*services.AudioAssessmentResult, error)
	History(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error)
}

// AssessmentHandler handles symptom catalogue and triage requests
type AssessmentHandler struct {
	service        AssessmentService
	maxUploadBytes int64
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(service AssessmentService, maxUploadBytes int64) *AssessmentHandler {
	return &AssessmentHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// ListSymptoms handles GET /api/symptoms?category=
func (h *AssessmentHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms, err := h.service.ListSymptoms(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if symptoms == nil {
		symptoms = []*entities.Symptom{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"symptoms": symptoms})
}

// CreateAssessment handles POST /api/symptom-assessment
func (h *AssessmentHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var in entities.SymptomInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	assessment, err := h.service.Assess(r.Context(), currentUser(r), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, assessmentBody(assessment))
}

// CreateAudioAssessment handles POST /api/symptom-assessment/audio with a
// multipart "audio" field
func (h *AssessmentHandler) CreateAudioAssessment(w http.ResponseWriter, r *http.Request) {
	audio, err := readUpload(w, r, "audio", h.maxUploadBytes)
	if err != nil {
		respondWithUploadError(w, err, "No audio file provided")
		return
	}

	result, err := h.service.AssessAudio(r.Context(), currentUser(r), audio)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if result.Assessment == nil {
		respondWithAnalysis(w, "transcription", result.Transcription.AnalysisStatus, result.Transcription)
		return
	}

	body := assessmentBody(result.Assessment)
	body["transcription"] = result.Transcription.Transcription
	respondWithSuccess(w, http.StatusCreated, body)
}

// ListAssessments handles GET /api/symptom-assessment?limit=
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	history, err := h.service.History(r.Context(), currentUser(r), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if history == nil {
		history = []*entities.SymptomAssessment{}
	}
	respondWithSuccess(w, http.StatusOK, envelope{"assessments": history})
}

func assessmentBody(a *entities.SymptomAssessment) envelope {
	return envelope{
		"assessment_id":         a.ID,
		"ai_analysis":           a.AIAnalysis,
		"recommended_specialty": a.RecommendedSpecialty,
		"severity_score":        a.SeverityScore,
	}
}
