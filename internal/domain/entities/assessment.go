package entities

import "time"

// Symptom is an entry of the symptom catalogue
type Symptom struct {
	ID                    string     `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	Description           string     `json:"description" db:"description"`
	Category              string     `json:"category" db:"category"`
	SeverityLevels        StringList `json:"severity_levels" db:"severity_levels"`
	AssociatedSpecialties StringList `json:"associated_specialties" db:"associated_specialties"`
}

// SymptomAssessment is a persisted triage run
type SymptomAssessment struct {
	ID                     string           `json:"id" db:"id"`
	UserID                 string           `json:"user_id" db:"user_id"`
	Symptoms               StringList       `json:"symptoms" db:"symptoms"`
	QuestionnaireResponses JSONMap          `json:"questionnaire_responses,omitempty" db:"questionnaire_responses"`
	Transcription          string           `json:"transcription,omitempty" db:"transcription"`
	AudioRecordingKey      string           `json:"-" db:"audio_recording_key"`
	AIAnalysis             *SymptomAnalysis `json:"ai_analysis" db:"ai_analysis"`
	RecommendedSpecialty   string           `json:"recommended_specialty" db:"recommended_specialty"`
	SeverityScore          int              `json:"severity_score" db:"severity_score"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
}
