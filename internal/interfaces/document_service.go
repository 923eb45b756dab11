package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// DocumentService handles indexed document operations
type DocumentService interface {
	// Save a single document
	SaveDocument(ctx context.Context, doc *models.Document) error

	// Save multiple documents in batch
	SaveDocuments(ctx context.Context, docs []*models.Document) error

	// Get document by ID
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// Get all chunks belonging to a source file
	GetBySourcePath(ctx context.Context, sourcePath string) ([]*models.Document, error)

	// Delete document
	DeleteDocument(ctx context.Context, id string) error

	// Delete all chunks belonging to a source file
	DeleteBySourcePath(ctx context.Context, sourcePath string) (int, error)

	// Search by query embedding
	Search(ctx context.Context, query *SearchQuery) ([]*models.ScoredDocument, error)

	// Stats
	GetStats(ctx context.Context) (*models.DocumentStats, error)
	Count(ctx context.Context, sourceType string) (int, error)

	// List documents with pagination
	List(ctx context.Context, opts *ListOptions) ([]*models.Document, error)
}

// SearchQuery represents vector search parameters
type SearchQuery struct {
	// Text query, kept for logging and diagnostics
	Text string

	// Query embedding for vector search
	Embedding []float32

	// Filters
	SourceType string

	// Results below this cosine similarity are dropped
	MinSimilarity float64

	// Maximum results to return
	Limit int
}

// ListOptions for listing documents
type ListOptions struct {
	SourceType string
	SourcePath string
	Limit      int
	Offset     int
	OrderBy    string // created_at, updated_at, title
	OrderDir   string // asc, desc
}
