package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

var documentColumns = []interface{}{
	"id", "user_id", "document_type", "title", "storage_key", "file_type",
	"file_size", "uploaded_by", "upload_source", "tags", "created_at",
}

// DocumentAdapter implements the DocumentRepository interface
type DocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDocumentAdapter creates a new document adapter
func NewDocumentAdapter(client *postgres.Client) repositories.DocumentRepository {
	return &DocumentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores document metadata
func (a *DocumentAdapter) Create(ctx context.Context, doc *entities.Document) error {
	record := goqu.Record{
		"id":            doc.ID,
		"user_id":       doc.UserID,
		"document_type": doc.DocumentType,
		"title":         doc.Title,
		"storage_key":   doc.StorageKey,
		"file_type":     doc.FileType,
		"file_size":     doc.FileSize,
		"uploaded_by":   doc.UploadedBy,
		"upload_source": nullableString(doc.UploadSource),
		"tags":          doc.Tags,
		"created_at":    doc.CreatedAt,
	}

	query, args, err := a.db.Insert("medical_documents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create document", err)
	}
	return nil
}

// GetByID retrieves a document owned by the user
func (a *DocumentAdapter) GetByID(ctx context.Context, userID, id string) (*entities.Document, error) {
	query, args, err := a.db.Select(documentColumns...).
		From("medical_documents").
		Where(goqu.Ex{"id": id, "user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doc, err := scanDocument(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("Document not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get document", err)
	}
	return doc, nil
}

// ListByUser returns a user's documents, optionally by type
func (a *DocumentAdapter) ListByUser(ctx context.Context, userID, documentType string) ([]*entities.Document, error) {
	ds := a.db.Select(documentColumns...).
		From("medical_documents").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("created_at").Desc())
	if documentType != "" {
		ds = ds.Where(goqu.Ex{"document_type": documentType})
	}
	return a.list(ctx, ds)
}

// ListByIDs returns the user's documents among ids
func (a *DocumentAdapter) ListByIDs(ctx context.Context, userID string, ids []string) ([]*entities.Document, error) {
	if len(ids) == 0 {
		return []*entities.Document{}, nil
	}
	ds := a.db.Select(documentColumns...).
		From("medical_documents").
		Where(goqu.Ex{"user_id": userID, "id": ids}).
		Order(goqu.C("created_at").Desc())
	return a.list(ctx, ds)
}

func (a *DocumentAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Document, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list documents", err)
	}
	defer rows.Close()

	docs := make([]*entities.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate documents", err)
	}
	return docs, nil
}

// CreateSummary stores a summarization run
func (a *DocumentAdapter) CreateSummary(ctx context.Context, summary *entities.RecordSummary) error {
	record := goqu.Record{
		"id":           summary.ID,
		"user_id":      summary.UserID,
		"summary_type": summary.SummaryType,
		"document_ids": summary.DocumentIDs,
		"summary_text": summary.SummaryText,
		"ai_insights":  summary.AIInsights,
		"created_at":   summary.CreatedAt,
	}

	query, args, err := a.db.Insert("record_summaries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create summary", err)
	}
	return nil
}

func scanDocument(row rowScanner) (*entities.Document, error) {
	doc := &entities.Document{}
	var source sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.DocumentType,
		&doc.Title,
		&doc.StorageKey,
		&doc.FileType,
		&doc.FileSize,
		&doc.UploadedBy,
		&source,
		&doc.Tags,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.UploadSource = source.String
	return doc, nil
}
