package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// RecordService defines the document and summary operations
type RecordService interface {
	Upload(ctx context.Context, userID string, req services.UploadRequest) (*entities.Document, error)
	List(ctx context.Context, userID, documentType string) ([]*entities.Document, error)
	Download(ctx context.Context, userID, id string) (*services.DocumentContent, error)
	Summarize(ctx context.Context, userID string, req services.SummarizeRequest) (*services.SummaryOutcome, error)
	ReceiveFromHospital(ctx context.Context, in entities.InboundDocument) (*entities.Document, error)
}

// RecordHandler handles medical document requests
type RecordHandler struct {
	service        RecordService
	maxUploadBytes int64
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(service RecordService, maxUploadBytes int64) *RecordHandler {
	return &RecordHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// documentView is a document as listed to its owner
type documentView struct {
	*entities.Document
	DownloadURL string `json:"download_url"`
}

// UploadDocument handles POST /api/documents with a multipart "file" field
// and optional "document_type" and "title" form values
func (h *RecordHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, "file", h.maxUploadBytes)
	if err != nil {
		respondWithUploadError(w, err, "No file provided")
		return
	}

	doc, err := h.service.Upload(r.Context(), currentUser(r), services.UploadRequest{
		DocumentType: r.FormValue("document_type"),
		Title:        r.FormValue("title"),
		File:         file,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":     "Document uploaded successfully",
		"document_id": doc.ID,
	})
}

// ListDocuments handles GET /api/documents?type=
func (h *RecordHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context(), currentUser(r), r.URL.Query().Get("type"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, documentView{
			Document:    doc,
			DownloadURL: fmt.Sprintf("/api/documents/%s/download", doc.ID),
		})
	}
	respondWithSuccess(w, http.StatusOK, envelope{"documents": views})
}

// DownloadDocument handles GET /api/documents/{id}/download
func (h *RecordHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	content, err := h.service.Download(r.Context(), currentUser(r), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doc := content.Document
	filename := doc.Title
	if doc.FileType != "" && entities.FileExtension(filename) != doc.FileType {
		filename += "." + doc.FileType
	}

	contentType := mime.TypeByExtension("." + doc.FileType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	http.ServeContent(w, r, filename, doc.CreatedAt, bytes.NewReader(content.Data))
}

// SummarizeRecords handles POST /api/records/summarize
func (h *RecordHandler) SummarizeRecords(w http.ResponseWriter, r *http.Request) {
	var req services.SummarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	outcome, err := h.service.Summarize(r.Context(), currentUser(r), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if outcome.Summary == nil {
		respondWithAnalysis(w, "result", outcome.Result.AnalysisStatus, outcome.Result)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"summary_id": outcome.Summary.ID,
		"summary":    outcome.Result.Summary,
		"insights":   outcome.Result.Insights,
		"timeline":   outcome.Result.Timeline,
		"red_flags":  outcome.Result.RedFlags,
	})
}

// ReceiveHospitalDocument handles POST /api/hmis/documents. The caller is a
// hospital system authenticated by API key, not a patient.
func (h *RecordHandler) ReceiveHospitalDocument(w http.ResponseWriter, r *http.Request) {
	var in entities.InboundDocument
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	doc, err := h.service.ReceiveFromHospital(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithSuccess(w, http.StatusCreated, envelope{
		"message":     "Document received successfully",
		"document_id": doc.ID,
	})
}
