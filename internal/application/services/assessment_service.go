package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const audioDir = "audio"

// AudioAssessmentResult is the outcome of a voice triage. Assessment is nil
// when transcription failed.
type AudioAssessmentResult struct {
	Transcription *entities.Transcription      `json:"transcription"`
	Assessment    *entities.SymptomAssessment `json:"assessment,omitempty"`
}

// AssessmentService runs symptom triage and keeps its history
type AssessmentService struct {
	repo     repositories.AssessmentRepository
	store    providers.DocumentStore
	analyzer Analyzer
	clock    Clock
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(repo repositories.AssessmentRepository, store providers.DocumentStore, analyzer Analyzer, clock Clock) *AssessmentService {
	return &AssessmentService{repo: repo, store: store, analyzer: analyzer, clock: clock}
}

// ListSymptoms returns the symptom catalogue
func (s *AssessmentService) ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error) {
	return s.repo.ListSymptoms(ctx, category)
}

// Assess analyzes the reported symptoms and stores the assessment. A
// degraded analysis is stored as well.
func (s *AssessmentService) Assess(ctx context.Context, userID string, in entities.SymptomInput) (*entities.SymptomAssessment, error) {
	analysis := s.analyzer.AnalyzeSymptoms(ctx, in)
	return s.persist(ctx, userID, in.Symptoms, in.Questionnaire, analysis, "", "")
}

// AssessAudio stores a voice recording, transcribes it and analyzes the
// transcription
func (s *AssessmentService) AssessAudio(ctx context.Context, userID string, audio entities.Upload) (*AudioAssessmentResult, error) {
	if len(audio.Data) == 0 || audio.Filename == "" {
		return nil, apperrors.NewValidationError("No audio file provided")
	}

	key, err := storeUpload(ctx, s.store, userID+"/"+audioDir, audio)
	if err != nil {
		return nil, err
	}

	transcription := s.analyzer.TranscribeAudio(ctx, attachmentOf(audio))
	if !transcription.Success {
		return &AudioAssessmentResult{Transcription: transcription}, nil
	}

	analysis := s.analyzer.AnalyzeSymptoms(ctx, entities.SymptomInput{Transcription: transcription.Transcription})
	assessment, err := s.persist(ctx, userID, analysis.IdentifiedSymptoms, nil, analysis, transcription.Transcription, key)
	if err != nil {
		return nil, err
	}
	return &AudioAssessmentResult{Transcription: transcription, Assessment: assessment}, nil
}

// History returns the user's most recent assessments
func (s *AssessmentService) History(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *AssessmentService) persist(
	ctx context.Context,
	userID string,
	symptoms []string,
	questionnaire map[string]interface{},
	analysis *entities.SymptomAnalysis,
	transcription, audioKey string,
) (*entities.SymptomAssessment, error) {
	if symptoms == nil {
		symptoms = []string{}
	}
	assessment := &entities.SymptomAssessment{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		Symptoms:               symptoms,
		QuestionnaireResponses: questionnaire,
		Transcription:          transcription,
		AudioRecordingKey:      audioKey,
		AIAnalysis:             analysis,
		RecommendedSpecialty:   analysis.RecommendedSpecialty,
		SeverityScore:          analysis.SeverityScore,
		CreatedAt:              s.clock.now(),
	}
	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}
