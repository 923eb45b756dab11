package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service implements EmbeddingService interface
type Service struct {
	llmService interfaces.LLMService
	modelName  string
	dimension  int
	logger     arbor.ILogger
}

// NewService creates a new embedding service
func NewService(llmService interfaces.LLMService, modelName string, dimension int, logger arbor.ILogger) interfaces.EmbeddingService {
	return &Service{
		llmService: llmService,
		modelName:  modelName,
		dimension:  dimension,
		logger:     logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("LLM service returned empty embedding")
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// EmbedDocument generates and sets embedding for a document
func (s *Service) EmbedDocument(ctx context.Context, doc *models.Document) error {
	text := s.prepareDocumentText(doc)

	embedding, err := s.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	now := time.Now()
	doc.Embedding = embedding
	doc.LastIndexed = &now

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Int("embedding_dim", len(embedding)).
		Int("text_length", len(text)).
		Msg("Embedded document")

	return nil
}

// EmbedDocuments generates embeddings for multiple documents
func (s *Service) EmbedDocuments(ctx context.Context, docs []*models.Document) error {
	for i, doc := range docs {
		if err := s.EmbedDocument(ctx, doc); err != nil {
			s.logger.Error().
				Err(err).
				Str("doc_id", doc.ID).
				Int("index", i).
				Msg("Failed to embed document")
			return err
		}
	}

	return nil
}

// GenerateQueryEmbedding generates embedding for a search query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the embedding model name
func (s *Service) ModelName() string {
	return s.modelName
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding service is available
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	err := s.llmService.HealthCheck(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}

// prepareDocumentText combines title and content for embedding
func (s *Service) prepareDocumentText(doc *models.Document) string {
	if doc.Title == "" {
		return doc.ContentMarkdown
	}
	return fmt.Sprintf("%s\n\n%s", doc.Title, doc.ContentMarkdown)
}
