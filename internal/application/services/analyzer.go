package services

import (
	"context"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
)

// Analyzer is the AI analysis surface the services depend on. It is
// satisfied by *analysis.Analyzer. Every method returns a fully populated
// result and never an error.
type Analyzer interface {
	AnalyzeSymptoms(ctx context.Context, in entities.SymptomInput) *entities.SymptomAnalysis
	TranscribeAudio(ctx context.Context, audio providers.Attachment) *entities.Transcription
	SummarizeRecords(ctx context.Context, docs []entities.DocumentMeta) *entities.RecordSummaryResult
	AnalyzePrescription(ctx context.Context, image providers.Attachment) *entities.PrescriptionAnalysis
	GenerateHealthInsights(ctx context.Context, profile entities.ProfileSubset, docs []entities.DocumentMeta, history []entities.SymptomHistoryEntry) *entities.HealthInsights
}

// Clock returns the current time; tests substitute a fixed one
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
