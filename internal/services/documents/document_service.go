package documents

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service implements DocumentService interface
type Service struct {
	storage          interfaces.DocumentStorage
	embeddingService interfaces.EmbeddingService
	logger           arbor.ILogger
}

// NewService creates a new document service
func NewService(
	storage interfaces.DocumentStorage,
	embeddingService interfaces.EmbeddingService,
	logger arbor.ILogger,
) interfaces.DocumentService {
	return &Service{
		storage:          storage,
		embeddingService: embeddingService,
		logger:           logger,
	}
}

// SaveDocument saves a single document, generating an ID if absent
func (s *Service) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = common.NewDocumentID()
	}

	if err := s.storage.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Str("source", doc.SourceType).
		Str("source_path", doc.SourcePath).
		Msg("Document saved")

	return nil
}

// SaveDocuments saves multiple documents in batch
func (s *Service) SaveDocuments(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = common.NewDocumentID()
		}
	}

	if err := s.storage.SaveDocuments(docs); err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}

	s.logger.Info().
		Int("total", len(docs)).
		Msg("Documents saved")

	return nil
}

// GetDocument retrieves a document by ID
func (s *Service) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.storage.GetDocument(id)
}

// GetBySourcePath retrieves all chunks for a source file
func (s *Service) GetBySourcePath(ctx context.Context, sourcePath string) ([]*models.Document, error) {
	return s.storage.GetDocumentsBySourcePath(sourcePath)
}

// DeleteDocument deletes a document
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if err := s.storage.DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info().Str("doc_id", id).Msg("Document deleted")
	return nil
}

// DeleteBySourcePath deletes all chunks for a source file and returns the
// number removed
func (s *Service) DeleteBySourcePath(ctx context.Context, sourcePath string) (int, error) {
	count, err := s.storage.DeleteDocumentsBySourcePath(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents for source: %w", err)
	}

	if count > 0 {
		s.logger.Info().
			Str("source_path", sourcePath).
			Int("count", count).
			Msg("Documents deleted for source")
	}
	return count, nil
}

// Search performs vector search, generating the query embedding when the
// caller provided only text
func (s *Service) Search(ctx context.Context, query *interfaces.SearchQuery) ([]*models.ScoredDocument, error) {
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Embedding == nil {
		if query.Text == "" {
			return nil, fmt.Errorf("text or embedding required for vector search")
		}
		embedding, err := s.embeddingService.GenerateQueryEmbedding(ctx, query.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate query embedding: %w", err)
		}
		query.Embedding = embedding
	}

	results, err := s.storage.VectorSearch(query.Embedding, query.MinSimilarity, query.Limit)
	if err != nil {
		return nil, err
	}

	if query.SourceType != "" {
		filtered := results[:0]
		for _, r := range results {
			if r.Document.SourceType == query.SourceType {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return results, nil
}

// GetStats retrieves document statistics
func (s *Service) GetStats(ctx context.Context) (*models.DocumentStats, error) {
	return s.storage.GetStats()
}

// Count returns document count, optionally filtered by source
func (s *Service) Count(ctx context.Context, sourceType string) (int, error) {
	if sourceType == "" {
		return s.storage.CountDocuments()
	}
	return s.storage.CountDocumentsBySource(sourceType)
}

// List returns documents with pagination
func (s *Service) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Document, error) {
	if opts == nil {
		opts = &interfaces.ListOptions{
			Limit:    50,
			Offset:   0,
			OrderBy:  "updated_at",
			OrderDir: "desc",
		}
	}

	return s.storage.ListDocuments(opts)
}
