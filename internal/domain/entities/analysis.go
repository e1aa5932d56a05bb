package entities

import "time"

// FallbackKind tells callers why a structured result is degraded. Callers
// branch on it instead of parsing Message.
type FallbackKind string

const (
	FallbackNone               FallbackKind = ""
	FallbackServiceUnavailable FallbackKind = "service_unavailable"
	FallbackResponseMalformed  FallbackKind = "response_malformed"
	FallbackInputRejected      FallbackKind = "input_rejected"
)

// Urgency tiers
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

// AnalysisStatus is embedded in every analysis result
type AnalysisStatus struct {
	Success      bool         `json:"success"`
	Fallback     bool         `json:"fallback"`
	FallbackKind FallbackKind `json:"fallback_kind,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// SymptomInput is the typed request for symptom analysis
type SymptomInput struct {
	Symptoms      []string               `json:"symptoms"`
	Questionnaire map[string]interface{} `json:"questionnaire_responses,omitempty"`
	Transcription string                 `json:"transcription,omitempty"`
}

// DocumentMeta describes one document handed to the summarizer
type DocumentMeta struct {
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Date     time.Time `json:"date"`
	FileType string    `json:"file_type"`
}

// ProfileSubset is the part of a user profile shared with the model
type ProfileSubset struct {
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

// SymptomAnalysis is the normalized triage result. Every field is populated
// on every path.
type SymptomAnalysis struct {
	AnalysisStatus
	RecommendedSpecialty  string   `json:"recommended_specialty"`
	SeverityScore         int      `json:"severity_score"`
	IdentifiedSymptoms    []string `json:"identified_symptoms"`
	Insights              string   `json:"insights"`
	UrgencyLevel          string   `json:"urgency_level"`
	AIConfidence          float64  `json:"ai_confidence"`
	DifferentialDiagnosis []string `json:"differential_diagnosis"`
	RecommendedActions    []string `json:"recommended_actions"`
}

// Transcription is the result of speech-to-text
type Transcription struct {
	AnalysisStatus
	Transcription string `json:"transcription,omitempty"`
}

// RecordSummaryResult is the result of record summarization
type RecordSummaryResult struct {
	AnalysisStatus
	Summary      string                 `json:"summary,omitempty"`
	Insights     map[string]interface{} `json:"insights,omitempty"`
	Timeline     string                 `json:"timeline"`
	RedFlags     []string               `json:"red_flags"`
	AIConfidence float64                `json:"ai_confidence"`
}

// PrescribedMedicine is one line read off a prescription
type PrescribedMedicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// PrescriptionData is the structured content of a prescription image
type PrescriptionData struct {
	Medicines              []PrescribedMedicine `json:"medicines"`
	DoctorName             string               `json:"doctor_name"`
	Date                   string               `json:"date"`
	PatientName            string               `json:"patient_name"`
	AdditionalInstructions string               `json:"additional_instructions"`
}

// PrescriptionAnalysis is the result of prescription image analysis
type PrescriptionAnalysis struct {
	AnalysisStatus
	PrescriptionData *PrescriptionData `json:"prescription_data,omitempty"`
	RawResponse      string            `json:"raw_response,omitempty"`
}

// InsightSections groups personalised recommendations
type InsightSections struct {
	PositiveTrends           []string `json:"positive_trends"`
	AreasOfConcern           []string `json:"areas_of_concern"`
	LifestyleRecommendations []string `json:"lifestyle_recommendations"`
	PreventiveMeasures       []string `json:"preventive_measures"`
	MonitoringSuggestions    []string `json:"monitoring_suggestions"`
}

// RiskAssessment buckets conditions by risk
type RiskAssessment struct {
	LowRisk      []string `json:"low_risk"`
	ModerateRisk []string `json:"moderate_risk"`
	HighRisk     []string `json:"high_risk"`
}

// HealthInsightsData is the structured content of a health insights answer
type HealthInsightsData struct {
	HealthScore    int             `json:"health_score"`
	Insights       InsightSections `json:"insights"`
	RiskAssessment RiskAssessment  `json:"risk_assessment"`
	NextSteps      []string        `json:"next_steps"`
	AIConfidence   float64         `json:"ai_confidence"`
}

// HealthInsights is the result of personalised insight generation
type HealthInsights struct {
	AnalysisStatus
	Insights    *HealthInsightsData `json:"insights,omitempty"`
	RawResponse string              `json:"raw_response,omitempty"`
}

// SymptomHistoryEntry is one past assessment handed to the insights generator
type SymptomHistoryEntry struct {
	Date                 time.Time `json:"date"`
	Symptoms             []string  `json:"symptoms"`
	RecommendedSpecialty string    `json:"recommended_specialty"`
	SeverityScore        int       `json:"severity_score"`
}
