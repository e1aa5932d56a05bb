package analysis

import (
	"fmt"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// Symptom analysis defaults
const (
	DefaultSpecialty       = "General Medicine"
	DefaultSeverity        = 5
	DefaultUrgency         = entities.UrgencyMedium
	ParsedConfidence       = 0.7
	TextFallbackConfidence = 0.7
	FailureConfidence      = 0.0
)

// Record summary defaults
const (
	SummaryDefaultText            = "Summary generation completed"
	SummaryParsedConfidence       = 0.7
	SummaryTextFallbackConfidence = 0.5
)

const (
	unavailableInsight = "AI analysis not available. Please consult with a healthcare provider."
	consultAction      = "Consult with a healthcare provider"
	consultNowAction   = "Consult with a healthcare provider immediately"
	unavailableMessage = "AI service not available"
)

// symptomFallback is the coarse triage default used whenever no parsed model
// output exists. Appointment routing depends on these fields being set.
func symptomFallback(in entities.SymptomInput, status entities.AnalysisStatus, insight string, confidence float64, actions []string) *entities.SymptomAnalysis {
	return &entities.SymptomAnalysis{
		AnalysisStatus:        status,
		RecommendedSpecialty:  DefaultSpecialty,
		SeverityScore:         DefaultSeverity,
		IdentifiedSymptoms:    copyStrings(nonNilStrings(in.Symptoms)),
		Insights:              insight,
		UrgencyLevel:          DefaultUrgency,
		AIConfidence:          confidence,
		DifferentialDiagnosis: []string{},
		RecommendedActions:    actions,
	}
}

func symptomUnavailable(in entities.SymptomInput) *entities.SymptomAnalysis {
	return symptomFallback(in, unavailableStatus(), unavailableInsight, FailureConfidence, []string{consultAction})
}

func symptomFailed(in entities.SymptomInput, out Outcome) *entities.SymptomAnalysis {
	insight := fmt.Sprintf("Analysis error occurred: %s. Please consult with a healthcare provider.", out.Message)
	return symptomFallback(in, failedStatus(out, out.Message), insight, FailureConfidence, []string{consultNowAction})
}

func symptomUnparsed(in entities.SymptomInput, raw string) *entities.SymptomAnalysis {
	status := entities.AnalysisStatus{
		Success:      true,
		Fallback:     true,
		FallbackKind: entities.FallbackResponseMalformed,
	}
	return symptomFallback(in, status, raw, TextFallbackConfidence, []string{consultAction})
}

func unavailableStatus() entities.AnalysisStatus {
	return entities.AnalysisStatus{
		Success:      false,
		Fallback:     true,
		FallbackKind: entities.FallbackServiceUnavailable,
		Message:      unavailableMessage,
	}
}

// failedStatus describes a non-success outcome. Unavailable outcomes get the
// fixed message so callers see the same text whatever the cause.
func failedStatus(out Outcome, message string) entities.AnalysisStatus {
	if out.Kind == KindServiceUnavailable && out.Attempts == 0 {
		return unavailableStatus()
	}
	kind := out.Kind
	if kind == KindNone {
		kind = KindServiceUnavailable
	}
	return entities.AnalysisStatus{
		Success:      false,
		Fallback:     true,
		FallbackKind: kind,
		Message:      message,
	}
}
