package models

import (
	"strings"
	"time"
)

// Document represents an indexed chunk of a knowledge file
// PRIMARY CONTENT FORMAT: Markdown (ContentMarkdown field)
type Document struct {
	// Identity
	ID         string `json:"id"`          // doc_{uuid}
	SourceType string `json:"source_type"` // markdown, text, html, pdf
	SourcePath string `json:"source_path"` // Path of the file this chunk came from

	// Content (markdown-first)
	Title           string `json:"title"`
	ContentMarkdown string `json:"content_markdown"` // PRIMARY CONTENT: Markdown format

	// Chunk position within the source file
	ChunkIndex int `json:"chunk_index"`
	Page       int `json:"page,omitempty"` // 1-based page number for PDF sources, 0 otherwise

	// Embedding vector used for similarity search, empty until indexed
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata (source-specific data stored as JSON)
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	URL      string                 `json:"url,omitempty"` // Link to original when the source is a web page

	// Sync tracking
	ContentHash string     `json:"content_hash,omitempty"` // Hash of source content to detect changes
	LastIndexed *time.Time `json:"last_indexed,omitempty"` // When the chunk was last embedded

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsIndexed reports whether the document has an embedding
func (d *Document) IsIndexed() bool {
	return len(d.Embedding) > 0
}

// IsPDF reports whether the document came from a PDF source
func (d *Document) IsPDF() bool {
	return d.SourceType == SourceTypePDF
}

// IsWebSource reports whether the document's origin is a URL rather than a local file
func (d *Document) IsWebSource() bool {
	return strings.HasPrefix(d.URL, "http://") || strings.HasPrefix(d.URL, "https://")
}

// Source type values for Document.SourceType
const (
	SourceTypeMarkdown = "markdown"
	SourceTypeText     = "text"
	SourceTypeHTML     = "html"
	SourceTypePDF      = "pdf"
)

// DocumentStats represents statistics about the document store
type DocumentStats struct {
	TotalDocuments    int            `json:"total_documents"`
	IndexedDocuments  int            `json:"indexed_documents"`
	DocumentsBySource map[string]int `json:"documents_by_source"`
	SourceFiles       int            `json:"source_files"`
	LastUpdated       time.Time      `json:"last_updated"`
}

// ScoredDocument pairs a document with its similarity to a query embedding
type ScoredDocument struct {
	Document   *Document `json:"document"`
	Similarity float64   `json:"similarity"`
}
