package search

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// VectorSearchService implements SearchService with cosine similarity over
// stored document embeddings
type VectorSearchService struct {
	embeddingService interfaces.EmbeddingService
	storage          interfaces.DocumentStorage
	config           *common.RetrievalConfig
	logger           arbor.ILogger
}

// NewVectorSearchService creates a new vector search service
func NewVectorSearchService(
	embeddingService interfaces.EmbeddingService,
	storage interfaces.DocumentStorage,
	config *common.RetrievalConfig,
	logger arbor.ILogger,
) interfaces.SearchService {
	return &VectorSearchService{
		embeddingService: embeddingService,
		storage:          storage,
		config:           config,
		logger:           logger,
	}
}

// Search embeds the query and returns the most similar documents
func (s *VectorSearchService) Search(ctx context.Context, query string, limit int) ([]*models.ScoredDocument, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	embedding, err := s.embeddingService.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return s.SearchByEmbedding(ctx, embedding, limit)
}

// SearchByEmbedding returns the most similar documents for a precomputed
// query embedding
func (s *VectorSearchService) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*models.ScoredDocument, error) {
	if limit <= 0 {
		limit = s.config.TopK
	}

	results, err := s.storage.VectorSearch(embedding, s.config.MinSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	s.logger.Debug().
		Int("results", len(results)).
		Int("limit", limit).
		Msg("Vector search completed")

	return results, nil
}
