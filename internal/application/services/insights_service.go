package services

import (
	"context"
	"strconv"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
)

const (
	insightDocumentLimit = 10
	insightHistoryLimit  = 10
)

// InsightsService builds personalised health insights
type InsightsService struct {
	users       repositories.UserRepository
	documents   repositories.DocumentRepository
	assessments repositories.AssessmentRepository
	analyzer    Analyzer
	clock       Clock
}

// NewInsightsService creates a new insights service
func NewInsightsService(
	users repositories.UserRepository,
	documents repositories.DocumentRepository,
	assessments repositories.AssessmentRepository,
	analyzer Analyzer,
	clock Clock,
) *InsightsService {
	return &InsightsService{
		users:       users,
		documents:   documents,
		assessments: assessments,
		analyzer:    analyzer,
		clock:       clock,
	}
}

// Generate analyzes the profile, the most recent documents and the recent
// symptom history
func (s *InsightsService) Generate(ctx context.Context, userID string) (*entities.HealthInsights, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if len(docs) > insightDocumentLimit {
		docs = docs[:insightDocumentLimit]
	}
	metas := make([]entities.DocumentMeta, 0, len(docs))
	for _, doc := range docs {
		metas = append(metas, doc.Meta())
	}

	assessments, err := s.assessments.ListByUser(ctx, userID, insightHistoryLimit)
	if err != nil {
		return nil, err
	}
	history := make([]entities.SymptomHistoryEntry, 0, len(assessments))
	for _, a := range assessments {
		history = append(history, entities.SymptomHistoryEntry{
			Date:                 a.CreatedAt,
			Symptoms:             a.Symptoms,
			RecommendedSpecialty: a.RecommendedSpecialty,
			SeverityScore:        a.SeverityScore,
		})
	}

	return s.analyzer.GenerateHealthInsights(ctx, profileSubset(user, s.clock.now()), metas, history), nil
}

func profileSubset(user *entities.User, now time.Time) entities.ProfileSubset {
	subset := entities.ProfileSubset{Gender: user.Gender}
	if age := user.Age(now); age >= 0 {
		subset.Age = strconv.Itoa(age)
	}
	return subset
}
