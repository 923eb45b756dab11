package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// SearchService provides semantic document search.
// This interface abstracts the search implementation so different backends
// (in-process cosine scan, external vector index) can be swapped without
// affecting the chat pipeline.
type SearchService interface {
	// Search embeds the query text and returns the most similar documents,
	// best match first
	Search(ctx context.Context, query string, limit int) ([]*models.ScoredDocument, error)

	// SearchByEmbedding returns the most similar documents for a precomputed
	// query embedding
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*models.ScoredDocument, error)
}
