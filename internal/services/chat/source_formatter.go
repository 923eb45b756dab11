package chat

import (
	"fmt"
	"strings"

	"github.com/ternarybob/respondeo/internal/models"
)

// buildSourceRefs converts retrieved documents into citations. Chunks from the
// same file and page collapse into one reference, keeping the best similarity.
// Results stay in retrieval order, best match first.
func buildSourceRefs(docs []*models.ScoredDocument) []models.SourceRef {
	if len(docs) == 0 {
		return nil
	}

	type key struct {
		path string
		page int
	}

	seen := make(map[key]bool, len(docs))
	refs := make([]models.SourceRef, 0, len(docs))

	for _, sd := range docs {
		if sd == nil || sd.Document == nil {
			continue
		}
		doc := sd.Document

		path := doc.SourcePath
		if doc.IsWebSource() && doc.URL != "" {
			path = doc.URL
		}
		if path == "" {
			continue
		}

		page := 0
		if doc.IsPDF() {
			page = doc.Page
		}

		k := key{path: path, page: page}
		if seen[k] {
			continue
		}
		seen[k] = true

		refs = append(refs, models.SourceRef{
			Path:       path,
			Page:       page,
			Similarity: sd.Similarity,
			IsLink:     strings.HasPrefix(path, "http"),
		})
	}

	return refs
}

// buildContextText formats retrieved documents into the context block appended
// to the system prompt
func buildContextText(docs []*models.ScoredDocument) string {
	if len(docs) == 0 {
		return ""
	}

	var parts []string
	parts = append(parts, "CONTEXT DOCUMENTS:")
	parts = append(parts, "")

	for i, sd := range docs {
		if sd == nil || sd.Document == nil {
			continue
		}
		doc := sd.Document

		parts = append(parts, fmt.Sprintf("Document %d:", i+1))
		parts = append(parts, fmt.Sprintf("Source: %s", doc.SourcePath))
		if doc.Title != "" {
			parts = append(parts, fmt.Sprintf("Title: %s", doc.Title))
		}
		if doc.IsPDF() && doc.Page > 0 {
			parts = append(parts, fmt.Sprintf("Page: %d", doc.Page))
		}
		if doc.URL != "" {
			parts = append(parts, fmt.Sprintf("URL: %s", doc.URL))
		}
		parts = append(parts, fmt.Sprintf("Content: %s", doc.ContentMarkdown))
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}
