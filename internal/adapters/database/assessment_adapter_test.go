package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

func TestAssessmentAdapter_ListSymptoms(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAssessmentAdapter(client)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "category", "severity_levels", "associated_specialties"}).
		AddRow("s1", "Chest Pain", nil, "cardiovascular", []byte(`["mild","severe"]`), []byte(`["Cardiology"]`))
	mock.ExpectQuery(`SELECT .* FROM "symptoms" WHERE \("category" = 'cardiovascular'\) ORDER BY "name" ASC`).
		WillReturnRows(rows)

	symptoms, err := adapter.ListSymptoms(context.Background(), "cardiovascular")

	require.NoError(t, err)
	require.Len(t, symptoms, 1)
	assert.Empty(t, symptoms[0].Description)
	assert.Equal(t, entities.StringList{"Cardiology"}, symptoms[0].AssociatedSpecialties)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentAdapter_ListByUser(t *testing.T) {
	columns := []string{
		"id", "user_id", "symptoms", "questionnaire_responses", "transcription",
		"audio_recording_key", "ai_analysis", "recommended_specialty", "severity_score", "created_at",
	}
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("decodes stored analysis", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAssessmentAdapter(client)

		rows := sqlmock.NewRows(columns).
			AddRow("a1", "u1", []byte(`["Fever"]`), []byte(`{"duration":"3 days"}`), nil, nil,
				[]byte(`{"success":true,"recommended_specialty":"General Medicine","severity_score":4}`),
				"General Medicine", int64(4), created).
			AddRow("a2", "u1", []byte(`["Cough"]`), nil, "dry cough at night", "u1/a2.webm",
				[]byte(`null`), nil, nil, created)
		mock.ExpectQuery(`SELECT .* FROM "symptom_assessments" WHERE \("user_id" = 'u1'\) ORDER BY "created_at" DESC LIMIT 5`).
			WillReturnRows(rows)

		assessments, err := adapter.ListByUser(context.Background(), "u1", 5)

		require.NoError(t, err)
		require.Len(t, assessments, 2)
		require.NotNil(t, assessments[0].AIAnalysis)
		assert.Equal(t, 4, assessments[0].AIAnalysis.SeverityScore)
		assert.Equal(t, "3 days", assessments[0].QuestionnaireResponses["duration"])
		assert.Nil(t, assessments[1].AIAnalysis)
		assert.Equal(t, "dry cough at night", assessments[1].Transcription)
		assert.Zero(t, assessments[1].SeverityScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is internal", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAssessmentAdapter(client)

		mock.ExpectQuery(`SELECT .* FROM "symptom_assessments"`).WillReturnError(errors.New("connection reset"))

		_, err := adapter.ListByUser(context.Background(), "u1", 0)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssessmentAdapter_Create(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAssessmentAdapter(client)

	mock.ExpectExec(`INSERT INTO "symptom_assessments"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.SymptomAssessment{
		ID:                   "a1",
		UserID:               "u1",
		Symptoms:             entities.StringList{"Fever"},
		RecommendedSpecialty: "General Medicine",
		SeverityScore:        3,
		CreatedAt:            time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
