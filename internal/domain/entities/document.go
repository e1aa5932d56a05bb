package entities

import (
	"path/filepath"
	"strings"
	"time"
)

// Uploaders
const (
	UploadedByPatient  = "patient"
	UploadedByHospital = "hospital"
)

// Summary types
const (
	SummaryTypeAllRecords      = "all_records"
	SummaryTypeSelectedRecords = "selected_records"
)

var allowedExtensions = map[string]bool{
	"pdf": true, "png": true, "jpg": true, "jpeg": true, "gif": true,
	"mp3": true, "wav": true, "ogg": true, "m4a": true,
}

// FileExtension returns the lowercase extension of name without the dot
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// AllowedFile reports whether name carries an accepted extension
func AllowedFile(name string) bool {
	return allowedExtensions[FileExtension(name)]
}

// AllowedExtension reports whether ext, without a dot, is an accepted
// extension on its own
func AllowedExtension(ext string) bool {
	return allowedExtensions[ext]
}

// Document is a stored medical record file
type Document struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	DocumentType string     `json:"document_type" db:"document_type"`
	Title        string     `json:"title" db:"title"`
	StorageKey   string     `json:"-" db:"storage_key"`
	FileType     string     `json:"file_type" db:"file_type"`
	FileSize     int64      `json:"file_size" db:"file_size"`
	UploadedBy   string     `json:"uploaded_by" db:"uploaded_by"`
	UploadSource string     `json:"upload_source,omitempty" db:"upload_source"`
	Tags         StringList `json:"tags,omitempty" db:"tags"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Meta returns the summarizer view of the document
func (d *Document) Meta() DocumentMeta {
	return DocumentMeta{
		Title:    d.Title,
		Type:     d.DocumentType,
		Date:     d.CreatedAt,
		FileType: d.FileType,
	}
}

// RecordSummary is a persisted summarization run
type RecordSummary struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	SummaryType string     `json:"summary_type" db:"summary_type"`
	DocumentIDs StringList `json:"document_ids,omitempty" db:"document_ids"`
	SummaryText string     `json:"summary_text" db:"summary_text"`
	AIInsights  JSONMap    `json:"ai_insights,omitempty" db:"ai_insights"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Upload is a file received over the API
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
