package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// AssessmentRepository covers the symptom catalogue and assessment history
type AssessmentRepository interface {
	// ListSymptoms returns the catalogue, optionally filtered by category
	ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error)

	// Create stores an assessment
	Create(ctx context.Context, assessment *entities.SymptomAssessment) error

	// ListByUser returns a user's assessments, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error)
}
