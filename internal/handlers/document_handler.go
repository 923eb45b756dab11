package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// DocumentHandler handles document index HTTP requests
type DocumentHandler struct {
	documentService interfaces.DocumentService
	searchService   interfaces.SearchService
	logger          arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService interfaces.DocumentService, searchService interfaces.SearchService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		searchService:   searchService,
		logger:          logger,
	}
}

// StatsHandler handles GET /api/documents/stats
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.documentService.GetStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get document stats")
		WriteError(w, http.StatusInternalServerError, "Failed to get document stats")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// ListHandler handles GET /api/documents with optional source_type,
// source_path, limit, and offset query parameters
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := &interfaces.ListOptions{
		SourceType: r.URL.Query().Get("source_type"),
		SourcePath: r.URL.Query().Get("source_path"),
		Limit:      50,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 500 {
			opts.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			opts.Offset = offset
		}
	}

	docs, err := h.documentService.List(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	// Strip embeddings from the response, they are large and opaque
	items := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		items = append(items, map[string]interface{}{
			"id":          doc.ID,
			"source_type": doc.SourceType,
			"source_path": doc.SourcePath,
			"title":       doc.Title,
			"chunk_index": doc.ChunkIndex,
			"page":        doc.Page,
			"indexed":     doc.IsIndexed(),
			"updated_at":  doc.UpdatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": items,
		"count":     len(items),
	})
}

// SearchHandler handles GET /api/search?q=...&limit=N, a diagnostic endpoint
// exposing the same vector search the chat pipeline uses
func (h *DocumentHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	results, err := h.searchService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		WriteError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	items := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		items = append(items, map[string]interface{}{
			"id":          res.Document.ID,
			"source_path": res.Document.SourcePath,
			"title":       res.Document.Title,
			"page":        res.Document.Page,
			"similarity":  res.Similarity,
			"content":     res.Document.ContentMarkdown,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": items,
		"count":   len(items),
	})
}
