package badger

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) SaveDocuments(docs []*models.Document) error {
	for _, doc := range docs {
		if err := s.SaveDocument(doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) UpdateDocument(doc *models.Document) error {
	return s.SaveDocument(doc)
}

func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocumentsBySourcePath(sourcePath string) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("SourcePath").Eq(sourcePath)); err != nil {
		return nil, fmt.Errorf("failed to get documents by source path: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ChunkIndex < docs[j].ChunkIndex })

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) DeleteDocumentsBySourcePath(sourcePath string) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("SourcePath").Eq(sourcePath))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents for deletion: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&models.Document{}, badgerhold.Where("SourcePath").Eq(sourcePath)); err != nil {
		return 0, fmt.Errorf("failed to delete documents by source path: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) ListSourcePaths() ([]string, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	seen := make(map[string]bool)
	paths := []string{}
	for i := range docs {
		if docs[i].SourcePath != "" && !seen[docs[i].SourcePath] {
			seen[docs[i].SourcePath] = true
			paths = append(paths, docs[i].SourcePath)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// VectorSearch scans all indexed documents and ranks them by cosine
// similarity to the query embedding. A full scan is acceptable for the
// corpus sizes this store targets; a dedicated vector index would replace
// this for larger corpora.
func (s *DocumentStorage) VectorSearch(embedding []float32, minSimilarity float64, limit int) ([]*models.ScoredDocument, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	scored := make([]*models.ScoredDocument, 0, len(docs))
	for i := range docs {
		if len(docs[i].Embedding) == 0 {
			continue
		}
		sim := cosineSimilarity(embedding, docs[i].Embedding)
		if sim < minSimilarity {
			continue
		}
		scored = append(scored, &models.ScoredDocument{
			Document:   &docs[i],
			Similarity: sim,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched dimensions or zero vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (s *DocumentStorage) ListDocuments(opts *interfaces.ListOptions) ([]*models.Document, error) {
	query := badgerhold.Where("ID").Ne("") // Select all

	if opts != nil {
		if opts.SourceType != "" {
			query = query.And("SourceType").Eq(opts.SourceType)
		}
		if opts.SourcePath != "" {
			query = query.And("SourcePath").Eq(opts.SourcePath)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) GetDocumentsBySource(sourceType string) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("SourceType").Eq(sourceType)); err != nil {
		return nil, fmt.Errorf("failed to get documents by source: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) CountDocuments() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) CountDocumentsBySource(sourceType string) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("SourceType").Eq(sourceType))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents by source: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) GetStats() (*models.DocumentStats, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to load documents for stats: %w", err)
	}

	bySource := make(map[string]int)
	sourceFiles := make(map[string]bool)
	indexed := 0
	for i := range docs {
		bySource[docs[i].SourceType]++
		if docs[i].SourcePath != "" {
			sourceFiles[docs[i].SourcePath] = true
		}
		if len(docs[i].Embedding) > 0 {
			indexed++
		}
	}

	return &models.DocumentStats{
		TotalDocuments:    len(docs),
		IndexedDocuments:  indexed,
		DocumentsBySource: bySource,
		SourceFiles:       len(sourceFiles),
		LastUpdated:       time.Now(),
	}, nil
}

func (s *DocumentStorage) ClearAll() error {
	return s.db.Store().DeleteMatching(&models.Document{}, nil)
}
