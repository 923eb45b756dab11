package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondeo/internal/models"
)

func scored(doc *models.Document, sim float64) *models.ScoredDocument {
	return &models.ScoredDocument{Document: doc, Similarity: sim}
}

func TestBuildSourceRefsDedupesChunks(t *testing.T) {
	docs := []*models.ScoredDocument{
		scored(&models.Document{SourceType: models.SourceTypeMarkdown, SourcePath: "a.md", ChunkIndex: 0}, 0.9),
		scored(&models.Document{SourceType: models.SourceTypeMarkdown, SourcePath: "a.md", ChunkIndex: 1}, 0.8),
		scored(&models.Document{SourceType: models.SourceTypeMarkdown, SourcePath: "b.md"}, 0.7),
	}

	refs := buildSourceRefs(docs)

	require.Len(t, refs, 2)
	assert.Equal(t, "a.md", refs[0].Path)
	assert.Equal(t, 0.9, refs[0].Similarity)
	assert.Equal(t, "b.md", refs[1].Path)
}

func TestBuildSourceRefsPDFPagesAreDistinct(t *testing.T) {
	docs := []*models.ScoredDocument{
		scored(&models.Document{SourceType: models.SourceTypePDF, SourcePath: "policy.pdf", Page: 1}, 0.9),
		scored(&models.Document{SourceType: models.SourceTypePDF, SourcePath: "policy.pdf", Page: 2}, 0.8),
		scored(&models.Document{SourceType: models.SourceTypePDF, SourcePath: "policy.pdf", Page: 1}, 0.7),
	}

	refs := buildSourceRefs(docs)

	require.Len(t, refs, 2)
	assert.Equal(t, 1, refs[0].Page)
	assert.Equal(t, 2, refs[1].Page)
	assert.Equal(t, "policy.pdf (page 1)", refs[0].Label())
}

func TestBuildSourceRefsWebSource(t *testing.T) {
	docs := []*models.ScoredDocument{
		scored(&models.Document{
			SourceType: models.SourceTypeHTML,
			SourcePath: "handbook.html",
			URL:        "https://intranet.example.com/handbook",
		}, 0.9),
	}

	refs := buildSourceRefs(docs)

	require.Len(t, refs, 1)
	assert.Equal(t, "https://intranet.example.com/handbook", refs[0].Path)
	assert.True(t, refs[0].IsLink)
}

func TestBuildSourceRefsEmpty(t *testing.T) {
	assert.Nil(t, buildSourceRefs(nil))
	assert.Empty(t, buildSourceRefs([]*models.ScoredDocument{{Document: nil}}))
}

func TestBuildContextText(t *testing.T) {
	docs := []*models.ScoredDocument{
		scored(&models.Document{
			SourceType:      models.SourceTypePDF,
			SourcePath:      "policy.pdf",
			Title:           "Leave Policy",
			Page:            3,
			ContentMarkdown: "Annual leave accrues monthly.",
		}, 0.9),
	}

	text := buildContextText(docs)

	assert.Contains(t, text, "CONTEXT DOCUMENTS:")
	assert.Contains(t, text, "Document 1:")
	assert.Contains(t, text, "Source: policy.pdf")
	assert.Contains(t, text, "Title: Leave Policy")
	assert.Contains(t, text, "Page: 3")
	assert.Contains(t, text, "Content: Annual leave accrues monthly.")

	assert.Empty(t, buildContextText(nil))
}
