package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
)

// Operation names used for logging
const (
	OpAnalyzeSymptoms     = "analyze_symptoms"
	OpTranscribeAudio     = "transcribe_audio"
	OpSummarizeRecords    = "summarize_records"
	OpAnalyzePrescription = "analyze_prescription"
	OpHealthInsights      = "health_insights"
)

var urgencyLevels = map[string]bool{
	entities.UrgencyLow:       true,
	entities.UrgencyMedium:    true,
	entities.UrgencyHigh:      true,
	entities.UrgencyEmergency: true,
}

// Analyzer runs the medical analysis operations. Results are always fully
// populated; failures are reported through AnalysisStatus, never as errors.
type Analyzer struct {
	invoker *Invoker
}

// NewAnalyzer creates an analyzer on top of an invoker
func NewAnalyzer(invoker *Invoker) *Analyzer {
	return &Analyzer{invoker: invoker}
}

// Available reports whether the AI service is configured
func (a *Analyzer) Available() bool {
	return a.invoker.Available()
}

// AnalyzeSymptoms triages a symptom list into specialty, severity and urgency.
func (a *Analyzer) AnalyzeSymptoms(ctx context.Context, in entities.SymptomInput) *entities.SymptomAnalysis {
	if !a.invoker.Available() {
		return symptomUnavailable(in)
	}

	out := a.invoker.Invoke(ctx, OpAnalyzeSymptoms, SymptomPrompt(in), nil)
	if !out.Success {
		if out.Kind == KindServiceUnavailable && out.Attempts == 0 {
			return symptomUnavailable(in)
		}
		return symptomFailed(in, out)
	}

	return parseSymptomAnalysis(out.Text, in)
}

func parseSymptomAnalysis(raw string, in entities.SymptomInput) *entities.SymptomAnalysis {
	var result *entities.SymptomAnalysis
	err := safely(func() error {
		obj, err := decodeObject(raw)
		if err != nil {
			return err
		}

		urgency := strings.ToLower(obj.str("urgency_level", DefaultUrgency))
		if !urgencyLevels[urgency] {
			urgency = DefaultUrgency
		}

		result = &entities.SymptomAnalysis{
			AnalysisStatus:        entities.AnalysisStatus{Success: true},
			RecommendedSpecialty:  obj.str("recommended_specialty", DefaultSpecialty),
			SeverityScore:         obj.intIn("severity_score", DefaultSeverity, 1, 10),
			IdentifiedSymptoms:    obj.strings("identified_symptoms", nonNilStrings(in.Symptoms)),
			Insights:              obj.str("insights", ""),
			UrgencyLevel:          urgency,
			AIConfidence:          obj.floatIn("ai_confidence", ParsedConfidence, 0, 1),
			DifferentialDiagnosis: obj.strings("differential_diagnosis", nil),
			RecommendedActions:    obj.strings("recommended_actions", []string{consultAction}),
		}
		return nil
	})
	if err != nil {
		return symptomUnparsed(in, raw)
	}
	return result
}

// TranscribeAudio turns a voice recording into text.
func (a *Analyzer) TranscribeAudio(ctx context.Context, audio providers.Attachment) *entities.Transcription {
	if !a.invoker.Available() {
		return &entities.Transcription{AnalysisStatus: unavailableStatus()}
	}

	out := a.invoker.Invoke(ctx, OpTranscribeAudio, TranscriptionPrompt(), &audio)
	if !out.Success {
		return &entities.Transcription{
			AnalysisStatus: failedStatus(out, fmt.Sprintf("Transcription failed: %s", out.Message)),
		}
	}

	return &entities.Transcription{
		AnalysisStatus: entities.AnalysisStatus{Success: true},
		Transcription:  strings.TrimSpace(out.Text),
	}
}

// SummarizeRecords produces a narrative summary of the given documents.
func (a *Analyzer) SummarizeRecords(ctx context.Context, docs []entities.DocumentMeta) *entities.RecordSummaryResult {
	if !a.invoker.Available() {
		return &entities.RecordSummaryResult{
			AnalysisStatus: unavailableStatus(),
			RedFlags:       []string{},
		}
	}

	out := a.invoker.Invoke(ctx, OpSummarizeRecords, SummaryPrompt(docs), nil)
	if !out.Success {
		return &entities.RecordSummaryResult{
			AnalysisStatus: failedStatus(out, fmt.Sprintf("Record summarization failed: %s", out.Message)),
			RedFlags:       []string{},
		}
	}

	return parseRecordSummary(out.Text)
}

func parseRecordSummary(raw string) *entities.RecordSummaryResult {
	var result *entities.RecordSummaryResult
	err := safely(func() error {
		obj, err := decodeObject(raw)
		if err != nil {
			return err
		}

		insights, _ := plain(map[string]interface{}(obj.obj("insights"))).(map[string]interface{})
		result = &entities.RecordSummaryResult{
			AnalysisStatus: entities.AnalysisStatus{Success: true},
			Summary:        obj.str("summary", SummaryDefaultText),
			Insights:       insights,
			Timeline:       obj.str("timeline", ""),
			RedFlags:       obj.strings("red_flags", nil),
			AIConfidence:   obj.floatIn("ai_confidence", SummaryParsedConfidence, 0, 1),
		}
		return nil
	})
	if err != nil {
		return &entities.RecordSummaryResult{
			AnalysisStatus: entities.AnalysisStatus{
				Success:      true,
				Fallback:     true,
				FallbackKind: entities.FallbackResponseMalformed,
			},
			Summary:      raw,
			Insights:     map[string]interface{}{},
			Timeline:     "",
			RedFlags:     []string{},
			AIConfidence: SummaryTextFallbackConfidence,
		}
	}
	return result
}

// AnalyzePrescription reads medicines off a prescription image.
func (a *Analyzer) AnalyzePrescription(ctx context.Context, image providers.Attachment) *entities.PrescriptionAnalysis {
	if !a.invoker.Available() {
		return &entities.PrescriptionAnalysis{AnalysisStatus: unavailableStatus()}
	}

	out := a.invoker.Invoke(ctx, OpAnalyzePrescription, PrescriptionPrompt(), &image)
	if !out.Success {
		return &entities.PrescriptionAnalysis{
			AnalysisStatus: failedStatus(out, fmt.Sprintf("Prescription analysis failed: %s", out.Message)),
		}
	}

	return parsePrescription(out.Text)
}

func parsePrescription(raw string) *entities.PrescriptionAnalysis {
	var data *entities.PrescriptionData
	err := safely(func() error {
		obj, err := decodeObject(raw)
		if err != nil {
			return err
		}

		medicines := []entities.PrescribedMedicine{}
		if items, ok := obj["medicines"].([]interface{}); ok {
			for _, item := range items {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				med := object(m)
				name := med.str("name", "")
				if name == "" {
					continue
				}
				medicines = append(medicines, entities.PrescribedMedicine{
					Name:         name,
					Dosage:       med.str("dosage", ""),
					Frequency:    med.str("frequency", ""),
					Duration:     med.str("duration", ""),
					Instructions: med.str("instructions", ""),
				})
			}
		}

		data = &entities.PrescriptionData{
			Medicines:              medicines,
			DoctorName:             obj.str("doctor_name", ""),
			Date:                   obj.str("date", ""),
			PatientName:            obj.str("patient_name", ""),
			AdditionalInstructions: obj.str("additional_instructions", ""),
		}
		return nil
	})
	if err != nil {
		return &entities.PrescriptionAnalysis{
			AnalysisStatus: entities.AnalysisStatus{
				Success:      false,
				Fallback:     true,
				FallbackKind: entities.FallbackResponseMalformed,
				Message:      "Could not parse prescription data",
			},
			RawResponse: raw,
		}
	}

	return &entities.PrescriptionAnalysis{
		AnalysisStatus:   entities.AnalysisStatus{Success: true},
		PrescriptionData: data,
	}
}

// GenerateHealthInsights produces personalised recommendations.
func (a *Analyzer) GenerateHealthInsights(ctx context.Context, profile entities.ProfileSubset, docs []entities.DocumentMeta, history []entities.SymptomHistoryEntry) *entities.HealthInsights {
	if !a.invoker.Available() {
		return &entities.HealthInsights{AnalysisStatus: unavailableStatus()}
	}

	out := a.invoker.Invoke(ctx, OpHealthInsights, InsightsPrompt(profile, docs, history), nil)
	if !out.Success {
		return &entities.HealthInsights{
			AnalysisStatus: failedStatus(out, fmt.Sprintf("Health insights generation failed: %s", out.Message)),
		}
	}

	return parseHealthInsights(out.Text)
}

func parseHealthInsights(raw string) *entities.HealthInsights {
	var data *entities.HealthInsightsData
	err := safely(func() error {
		obj, err := decodeObject(raw)
		if err != nil {
			return err
		}

		sections := obj.obj("insights")
		risk := obj.obj("risk_assessment")
		data = &entities.HealthInsightsData{
			HealthScore: obj.intIn("health_score", 50, 1, 100),
			Insights: entities.InsightSections{
				PositiveTrends:           sections.strings("positive_trends", nil),
				AreasOfConcern:           sections.strings("areas_of_concern", nil),
				LifestyleRecommendations: sections.strings("lifestyle_recommendations", nil),
				PreventiveMeasures:       sections.strings("preventive_measures", nil),
				MonitoringSuggestions:    sections.strings("monitoring_suggestions", nil),
			},
			RiskAssessment: entities.RiskAssessment{
				LowRisk:      risk.strings("low_risk", nil),
				ModerateRisk: risk.strings("moderate_risk", nil),
				HighRisk:     risk.strings("high_risk", nil),
			},
			NextSteps:    obj.strings("next_steps", nil),
			AIConfidence: obj.floatIn("ai_confidence", ParsedConfidence, 0, 1),
		}
		return nil
	})
	if err != nil {
		return &entities.HealthInsights{
			AnalysisStatus: entities.AnalysisStatus{
				Success:      false,
				Fallback:     true,
				FallbackKind: entities.FallbackResponseMalformed,
				Message:      "Could not parse health insights",
			},
			RawResponse: raw,
		}
	}

	return &entities.HealthInsights{
		AnalysisStatus: entities.AnalysisStatus{Success: true},
		Insights:       data,
	}
}
