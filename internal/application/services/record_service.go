package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

const (
	documentsDir        = "documents"
	defaultDocumentType = "general"
)

// UploadRequest is a patient document upload
type UploadRequest struct {
	DocumentType string
	Title        string
	File         entities.Upload
}

// SummarizeRequest selects the documents to summarize
type SummarizeRequest struct {
	SummaryType string   `json:"summary_type"`
	DocumentIDs []string `json:"document_ids"`
}

// SummaryOutcome is a summarization run. Summary is nil when the analysis
// did not succeed.
type SummaryOutcome struct {
	Result  *entities.RecordSummaryResult `json:"result"`
	Summary *entities.RecordSummary       `json:"summary,omitempty"`
}

// DocumentContent is a downloaded document
type DocumentContent struct {
	Document *entities.Document
	Data     []byte
}

// RecordService manages medical documents and their summaries
type RecordService struct {
	repo          repositories.DocumentRepository
	users         repositories.UserRepository
	store         providers.DocumentStore
	analyzer      Analyzer
	notifications *NotificationService
	clock         Clock
}

// NewRecordService creates a new record service
func NewRecordService(
	repo repositories.DocumentRepository,
	users repositories.UserRepository,
	store providers.DocumentStore,
	analyzer Analyzer,
	notifications *NotificationService,
	clock Clock,
) *RecordService {
	return &RecordService{
		repo:          repo,
		users:         users,
		store:         store,
		analyzer:      analyzer,
		notifications: notifications,
		clock:         clock,
	}
}

// Upload stores a patient document
func (s *RecordService) Upload(ctx context.Context, userID string, req UploadRequest) (*entities.Document, error) {
	if req.File.Filename == "" || len(req.File.Data) == 0 {
		return nil, apperrors.NewValidationError("No file provided")
	}
	if !entities.AllowedFile(req.File.Filename) {
		return nil, apperrors.NewValidationError("File type not allowed")
	}

	key, err := storeUpload(ctx, s.store, userID+"/"+documentsDir, req.File)
	if err != nil {
		return nil, err
	}

	doc := &entities.Document{
		ID:           uuid.New().String(),
		UserID:       userID,
		DocumentType: orDefault(req.DocumentType, defaultDocumentType),
		Title:        orDefault(req.Title, req.File.Filename),
		StorageKey:   key,
		FileType:     entities.FileExtension(req.File.Filename),
		FileSize:     int64(len(req.File.Data)),
		UploadedBy:   entities.UploadedByPatient,
		Tags:         entities.StringList{},
		CreatedAt:    s.clock.now(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the user's documents, optionally of one type
func (s *RecordService) List(ctx context.Context, userID, documentType string) ([]*entities.Document, error) {
	return s.repo.ListByUser(ctx, userID, documentType)
}

// Download returns a document with its content
func (s *RecordService) Download(ctx context.Context, userID, id string) (*DocumentContent, error) {
	doc, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, providers.ErrObjectNotFound) {
			return nil, apperrors.NewNotFoundError("Document file not found")
		}
		return nil, apperrors.NewInternalError("failed to read document", err)
	}
	return &DocumentContent{Document: doc, Data: data}, nil
}

// Summarize runs the record summarizer over all or selected documents and
// stores a successful summary
func (s *RecordService) Summarize(ctx context.Context, userID string, req SummarizeRequest) (*SummaryOutcome, error) {
	summaryType := orDefault(req.SummaryType, entities.SummaryTypeAllRecords)

	var (
		docs []*entities.Document
		err  error
	)
	switch summaryType {
	case entities.SummaryTypeAllRecords:
		docs, err = s.repo.ListByUser(ctx, userID, "")
	case entities.SummaryTypeSelectedRecords:
		if len(req.DocumentIDs) == 0 {
			return nil, apperrors.NewValidationError("Document IDs required for selected records")
		}
		docs, err = s.repo.ListByIDs(ctx, userID, req.DocumentIDs)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown summary type %q", summaryType))
	}
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperrors.NewNotFoundError("No documents found")
	}

	metas := make([]entities.DocumentMeta, 0, len(docs))
	for _, doc := range docs {
		metas = append(metas, doc.Meta())
	}

	result := s.analyzer.SummarizeRecords(ctx, metas)
	if !result.Success {
		return &SummaryOutcome{Result: result}, nil
	}

	summary := &entities.RecordSummary{
		ID:          uuid.New().String(),
		UserID:      userID,
		SummaryType: summaryType,
		SummaryText: result.Summary,
		AIInsights:  result.Insights,
		CreatedAt:   s.clock.now(),
	}
	if summaryType == entities.SummaryTypeSelectedRecords {
		summary.DocumentIDs = req.DocumentIDs
	}
	if err := s.repo.CreateSummary(ctx, summary); err != nil {
		return nil, err
	}
	return &SummaryOutcome{Result: result, Summary: summary}, nil
}

// ReceiveFromHospital stores a document pushed by a hospital and notifies
// the patient
func (s *RecordService) ReceiveFromHospital(ctx context.Context, in entities.InboundDocument) (*entities.Document, error) {
	if in.PatientID == "" || in.FileContent == "" || in.FileType == "" {
		return nil, apperrors.NewValidationError("Required fields missing")
	}
	fileType := strings.ToLower(strings.TrimPrefix(in.FileType, "."))
	if !entities.AllowedExtension(fileType) {
		return nil, apperrors.NewValidationError("File type not allowed")
	}

	if _, err := s.users.GetByID(ctx, in.PatientID); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError("Patient not found")
		}
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(in.FileContent)
	if err != nil {
		return nil, apperrors.NewValidationError("File content must be base64 encoded")
	}

	filename := fmt.Sprintf("hmis_%s.%s", uuid.New().String(), fileType)
	key := in.PatientID + "/" + documentsDir + "/" + filename
	if err := s.store.Put(ctx, key, contentType(entities.Upload{Filename: filename}), data); err != nil {
		return nil, apperrors.NewInternalError("failed to store file", err)
	}

	documentType := orDefault(in.DocumentType, defaultDocumentType)
	tags := entities.StringList{}
	if in.DoctorName != "" {
		tags = append(tags, in.DoctorName)
	}
	doc := &entities.Document{
		ID:           uuid.New().String(),
		UserID:       in.PatientID,
		DocumentType: documentType,
		Title:        orDefault(in.Title, filename),
		StorageKey:   key,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		UploadedBy:   entities.UploadedByHospital,
		UploadSource: in.HospitalID,
		Tags:         tags,
		CreatedAt:    s.clock.now(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("document_id", doc.ID).
		Str("hospital_id", in.HospitalID).
		Msg("Document received from hospital")

	s.notifications.notify(ctx, NotificationInput{
		UserID:  in.PatientID,
		Title:   "New Document Uploaded",
		Message: fmt.Sprintf("A new %s has been uploaded by %s", documentType, orDefault(in.DoctorName, "Hospital")),
		Type:    entities.NotificationDocumentUpload,
		Extra: entities.JSONMap{
			"document_id": doc.ID,
		},
	})
	return doc, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
