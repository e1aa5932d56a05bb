package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// Disclaimer is embedded in every prompt that asks for medical content.
const Disclaimer = "IMPORTANT: This is for informational purposes only and should not replace professional medical advice."

const symptomSchema = `{
  "recommended_specialty": "Most appropriate medical specialty",
  "severity_score": "Number from 1-10 (1=minor, 10=emergency)",
  "identified_symptoms": ["list", "of", "symptoms", "identified"],
  "insights": "Brief analysis and recommendations",
  "urgency_level": "low/medium/high/emergency",
  "ai_confidence": "Confidence score 0.0-1.0",
  "differential_diagnosis": ["possible", "conditions"],
  "recommended_actions": ["immediate", "actions", "to", "take"]
}`

const summarySchema = `{
  "summary": "Comprehensive medical summary covering key findings, treatments, and health status",
  "insights": {
    "key_diagnoses": ["list", "of", "main", "diagnoses"],
    "treatments": ["list", "of", "treatments", "received"],
    "medications": ["list", "of", "medications"],
    "test_results": ["summary", "of", "test", "results"],
    "health_trends": "Overall health trend analysis",
    "recommendations": ["list", "of", "recommendations"],
    "risk_factors": ["identified", "risk", "factors"],
    "follow_up_needed": ["areas", "requiring", "follow", "up"]
  },
  "timeline": "Chronological overview of medical events",
  "red_flags": ["any", "concerning", "findings"],
  "ai_confidence": "Confidence score 0.0-1.0"
}`

const prescriptionSchema = `{
  "medicines": [
    {
      "name": "Medicine name",
      "dosage": "Dosage information",
      "frequency": "How often to take",
      "duration": "How long to take",
      "instructions": "Special instructions"
    }
  ],
  "doctor_name": "Prescribing doctor's name",
  "date": "Prescription date",
  "patient_name": "Patient name if visible",
  "additional_instructions": "Any additional notes"
}`

const insightsSchema = `{
  "health_score": "Overall health score 1-100",
  "insights": {
    "positive_trends": ["list", "of", "positive", "health", "trends"],
    "areas_of_concern": ["list", "of", "areas", "needing", "attention"],
    "lifestyle_recommendations": ["personalized", "lifestyle", "advice"],
    "preventive_measures": ["preventive", "health", "measures"],
    "monitoring_suggestions": ["what", "to", "monitor"]
  },
  "risk_assessment": {
    "low_risk": ["conditions", "with", "low", "risk"],
    "moderate_risk": ["conditions", "with", "moderate", "risk"],
    "high_risk": ["conditions", "with", "high", "risk"]
  },
  "next_steps": ["recommended", "next", "actions"],
  "ai_confidence": "Confidence score 0.0-1.0"
}`

const transcriptionPrompt = `Please transcribe this audio recording. The audio contains a patient describing their symptoms.
Provide only the transcription of what was said, without any additional commentary.`

// SymptomPrompt builds the symptom triage prompt. Questionnaire keys are
// emitted in sorted order so identical input gives identical text.
func SymptomPrompt(in entities.SymptomInput) string {
	var b strings.Builder
	b.WriteString("You are a medical AI assistant helping to analyze patient symptoms. ")
	b.WriteString("Based on the following information, provide a medical analysis:\n\n")
	fmt.Fprintf(&b, "Symptoms reported: %s\n", indentJSON(nonNilStrings(in.Symptoms)))

	if len(in.Questionnaire) > 0 {
		fmt.Fprintf(&b, "\nQuestionnaire responses: %s\n", indentJSON(in.Questionnaire))
	}
	if strings.TrimSpace(in.Transcription) != "" {
		fmt.Fprintf(&b, "\nPatient voice description: %s\n", strings.TrimSpace(in.Transcription))
	}

	b.WriteString("\nPlease provide a JSON response with the following structure:\n")
	b.WriteString(symptomSchema)
	b.WriteString("\n\nRespond with the JSON object only.\n\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// TranscriptionPrompt is sent alongside an audio attachment
func TranscriptionPrompt() string {
	return transcriptionPrompt
}

// SummaryPrompt builds the record summarization prompt
func SummaryPrompt(docs []entities.DocumentMeta) string {
	var b strings.Builder
	b.WriteString("You are a medical AI assistant tasked with summarizing a patient's medical records.\n")
	b.WriteString("Based on the following document information, provide a comprehensive medical summary:\n\n")
	fmt.Fprintf(&b, "Patient Documents:\n%s\n", indentJSON(documentList(docs)))
	b.WriteString("\nPlease provide a JSON response with the following structure:\n")
	b.WriteString(summarySchema)
	b.WriteString("\n\nNote: This summary should be reviewed by healthcare professionals.\n\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// PrescriptionPrompt is sent alongside a prescription image
func PrescriptionPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze this prescription image and extract the following information in JSON format:\n")
	b.WriteString(prescriptionSchema)
	b.WriteString("\n\nIf any information is not clearly visible, mark it as \"Not clear\" or \"Not visible\".\n\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// InsightsPrompt builds the personalised health insights prompt
func InsightsPrompt(profile entities.ProfileSubset, docs []entities.DocumentMeta, history []entities.SymptomHistoryEntry) string {
	if history == nil {
		history = []entities.SymptomHistoryEntry{}
	}

	var b strings.Builder
	b.WriteString("You are a health insights AI assistant. Based on the following patient information,\n")
	b.WriteString("provide personalized health insights and recommendations:\n\n")
	b.WriteString("Patient Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(profile.Age))
	fmt.Fprintf(&b, "- Gender: %s\n", orNotSpecified(profile.Gender))
	fmt.Fprintf(&b, "- Medical History: %s\n", indentJSON(documentList(docs)))
	fmt.Fprintf(&b, "- Recent Symptoms: %s\n", indentJSON(history))
	b.WriteString("\nPlease provide a JSON response with:\n")
	b.WriteString(insightsSchema)
	b.WriteString("\n\nFocus on actionable insights and general wellness advice.\n\n")
	b.WriteString(Disclaimer)
	return b.String()
}

type documentEntry struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	FileType string `json:"file_type"`
}

func documentList(docs []entities.DocumentMeta) []documentEntry {
	out := make([]documentEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentEntry{
			Title:    d.Title,
			Type:     d.Type,
			Date:     d.Date.UTC().Format(time.RFC3339),
			FileType: d.FileType,
		})
	}
	return out
}

func indentJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not specified"
	}
	return v
}
