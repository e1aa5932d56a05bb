package repositories

import (
	"context"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

// DocumentRepository covers medical documents and their summaries
type DocumentRepository interface {
	// Create stores document metadata
	Create(ctx context.Context, doc *entities.Document) error

	// GetByID retrieves a document owned by the user
	GetByID(ctx context.Context, userID, id string) (*entities.Document, error)

	// ListByUser returns a user's documents, optionally by type, newest first
	ListByUser(ctx context.Context, userID, documentType string) ([]*entities.Document, error)

	// ListByIDs returns the user's documents among ids
	ListByIDs(ctx context.Context, userID string, ids []string) ([]*entities.Document, error)

	// CreateSummary stores a summarization run
	CreateSummary(ctx context.Context, summary *entities.RecordSummary) error
}
