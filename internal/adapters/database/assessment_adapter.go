package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// AssessmentAdapter implements the AssessmentRepository interface
type AssessmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAssessmentAdapter creates a new assessment adapter
func NewAssessmentAdapter(client *postgres.Client) repositories.AssessmentRepository {
	return &AssessmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListSymptoms returns the catalogue, optionally filtered by category
func (a *AssessmentAdapter) ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error) {
	ds := a.db.Select("id", "name", "description", "category", "severity_levels", "associated_specialties").
		From("symptoms").
		Order(goqu.C("name").Asc())
	if category != "" {
		ds = ds.Where(goqu.Ex{"category": category})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list symptoms", err)
	}
	defer rows.Close()

	symptoms := make([]*entities.Symptom, 0)
	for rows.Next() {
		s := &entities.Symptom{}
		var description, cat sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &description, &cat, &s.SeverityLevels, &s.AssociatedSpecialties); err != nil {
			return nil, apperrors.NewInternalError("failed to scan symptom", err)
		}
		s.Description = description.String
		s.Category = cat.String
		symptoms = append(symptoms, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate symptoms", err)
	}
	return symptoms, nil
}

// Create stores an assessment
func (a *AssessmentAdapter) Create(ctx context.Context, assessment *entities.SymptomAssessment) error {
	analysis, err := json.Marshal(assessment.AIAnalysis)
	if err != nil {
		return apperrors.NewInternalError("failed to encode analysis", err)
	}

	record := goqu.Record{
		"id":                      assessment.ID,
		"user_id":                 assessment.UserID,
		"symptoms":                assessment.Symptoms,
		"questionnaire_responses": assessment.QuestionnaireResponses,
		"transcription":           nullableString(assessment.Transcription),
		"audio_recording_key":     nullableString(assessment.AudioRecordingKey),
		"ai_analysis":             string(analysis),
		"recommended_specialty":   assessment.RecommendedSpecialty,
		"severity_score":          assessment.SeverityScore,
		"created_at":              assessment.CreatedAt,
	}

	query, args, err := a.db.Insert("symptom_assessments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create assessment", err)
	}
	return nil
}

// ListByUser returns a user's assessments, newest first
func (a *AssessmentAdapter) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error) {
	ds := a.db.Select(
		"id", "user_id", "symptoms", "questionnaire_responses", "transcription",
		"audio_recording_key", "ai_analysis", "recommended_specialty", "severity_score", "created_at",
	).From("symptom_assessments").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("created_at").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list assessments", err)
	}
	defer rows.Close()

	assessments := make([]*entities.SymptomAssessment, 0)
	for rows.Next() {
		as := &entities.SymptomAssessment{}
		var transcription, audioKey, specialty sql.NullString
		var analysis []byte
		var severity sql.NullInt64
		if err := rows.Scan(
			&as.ID, &as.UserID, &as.Symptoms, &as.QuestionnaireResponses, &transcription,
			&audioKey, &analysis, &specialty, &severity, &as.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan assessment", err)
		}
		as.Transcription = transcription.String
		as.AudioRecordingKey = audioKey.String
		as.RecommendedSpecialty = specialty.String
		as.SeverityScore = int(severity.Int64)
		if len(analysis) > 0 && string(analysis) != "null" {
			var parsed entities.SymptomAnalysis
			if err := json.Unmarshal(analysis, &parsed); err == nil {
				as.AIAnalysis = &parsed
			}
		}
		assessments = append(assessments, as)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate assessments", err)
	}
	return assessments, nil
}
