package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/respondeo/internal/models"
)

// formatSearchResults formats scored search results as markdown
func formatSearchResults(query string, results []*models.ScoredDocument) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\" (%d results)\n\n", query, len(results)))

	if len(results) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, result := range results {
		doc := result.Document
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, doc.Title))
		sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
		sb.WriteString(fmt.Sprintf("**Source:** %s (%s)\n", doc.SourcePath, doc.SourceType))
		if doc.IsPDF() && doc.Page > 0 {
			sb.WriteString(fmt.Sprintf("**Page:** %d\n", doc.Page))
		}
		sb.WriteString(fmt.Sprintf("**Similarity:** %.3f\n\n", result.Similarity))

		// Content preview (first 300 chars)
		content := doc.ContentMarkdown
		if len(content) > 300 {
			content = content[:300] + "..."
		}
		sb.WriteString("#### Content:\n")
		sb.WriteString(content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// formatDocument formats a single document chunk as markdown
func formatDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	sb.WriteString(fmt.Sprintf("**Source:** %s (%s)\n", doc.SourcePath, doc.SourceType))
	sb.WriteString(fmt.Sprintf("**Chunk:** %d\n", doc.ChunkIndex))
	if doc.IsPDF() && doc.Page > 0 {
		sb.WriteString(fmt.Sprintf("**Page:** %d\n", doc.Page))
	}
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n\n", doc.UpdatedAt.Format(time.RFC3339)))

	sb.WriteString("## Content\n\n")
	sb.WriteString(doc.ContentMarkdown)
	sb.WriteString("\n")

	return sb.String()
}

// formatSourceFile assembles a file's chunks in order and formats them as
// one markdown document
func formatSourceFile(sourcePath string, docs []*models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s (%d chunks)\n\n", sourcePath, len(docs)))

	if len(docs) == 0 {
		sb.WriteString("File is not indexed.\n")
		return sb.String()
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ChunkIndex < docs[j].ChunkIndex
	})

	for _, doc := range docs {
		sb.WriteString(doc.ContentMarkdown)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// formatSourceFileList formats the indexed file listing as markdown
func formatSourceFileList(paths []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Indexed Files (%d)\n\n", len(paths)))

	if len(paths) == 0 {
		sb.WriteString("No files indexed.\n")
		return sb.String()
	}

	sort.Strings(paths)
	for _, path := range paths {
		sb.WriteString(fmt.Sprintf("- %s\n", path))
	}

	return sb.String()
}
