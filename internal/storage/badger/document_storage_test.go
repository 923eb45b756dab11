package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func newTestDocumentStorage(t *testing.T) interfaces.DocumentStorage {
	t.Helper()
	return NewDocumentStorage(newTestDB(t), arbor.NewLogger())
}

func sampleDoc(id, sourcePath string, chunk int, embedding []float32) *models.Document {
	return &models.Document{
		ID:              id,
		SourceType:      models.SourceTypeMarkdown,
		SourcePath:      sourcePath,
		Title:           "Sample",
		ContentMarkdown: "content for " + id,
		ChunkIndex:      chunk,
		Embedding:       embedding,
	}
}

func TestDocumentSaveAndGet(t *testing.T) {
	storage := newTestDocumentStorage(t)

	doc := sampleDoc("doc_1", "a.md", 0, nil)
	require.NoError(t, storage.SaveDocument(doc))

	got, err := storage.GetDocument("doc_1")
	require.NoError(t, err)
	assert.Equal(t, "a.md", got.SourcePath)
	assert.Equal(t, "content for doc_1", got.ContentMarkdown)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = storage.GetDocument("doc_missing")
	assert.Error(t, err)
}

func TestDocumentsBySourcePath(t *testing.T) {
	storage := newTestDocumentStorage(t)

	require.NoError(t, storage.SaveDocuments([]*models.Document{
		sampleDoc("doc_1", "a.md", 0, nil),
		sampleDoc("doc_2", "a.md", 1, nil),
		sampleDoc("doc_3", "b.md", 0, nil),
	}))

	docs, err := storage.GetDocumentsBySourcePath("a.md")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	paths, err := storage.ListSourcePaths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, paths)

	removed, err := storage.DeleteDocumentsBySourcePath("a.md")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	docs, err = storage.GetDocumentsBySourcePath("a.md")
	require.NoError(t, err)
	assert.Empty(t, docs)

	count, err := storage.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	storage := newTestDocumentStorage(t)

	require.NoError(t, storage.SaveDocuments([]*models.Document{
		sampleDoc("doc_exact", "a.md", 0, []float32{1, 0, 0}),
		sampleDoc("doc_close", "b.md", 0, []float32{0.9, 0.1, 0}),
		sampleDoc("doc_far", "c.md", 0, []float32{0, 1, 0}),
		sampleDoc("doc_unindexed", "d.md", 0, nil),
	}))

	results, err := storage.VectorSearch([]float32{1, 0, 0}, 0.0, 10)
	require.NoError(t, err)

	// Unindexed documents never match; results come back best first
	require.Len(t, results, 3)
	assert.Equal(t, "doc_exact", results[0].Document.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.0001)
	assert.Equal(t, "doc_close", results[1].Document.ID)
	assert.Equal(t, "doc_far", results[2].Document.ID)
}

func TestVectorSearchMinSimilarityAndLimit(t *testing.T) {
	storage := newTestDocumentStorage(t)

	require.NoError(t, storage.SaveDocuments([]*models.Document{
		sampleDoc("doc_exact", "a.md", 0, []float32{1, 0, 0}),
		sampleDoc("doc_close", "b.md", 0, []float32{0.9, 0.1, 0}),
		sampleDoc("doc_orthogonal", "c.md", 0, []float32{0, 1, 0}),
	}))

	results, err := storage.VectorSearch([]float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = storage.VectorSearch([]float32{1, 0, 0}, 0.0, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_exact", results[0].Document.ID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 0.0001)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 0.0001)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 0.0001)

	// Mismatched or empty vectors score zero
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestDocumentStats(t *testing.T) {
	storage := newTestDocumentStorage(t)

	pdf := sampleDoc("doc_pdf", "p.pdf", 0, []float32{1})
	pdf.SourceType = models.SourceTypePDF
	require.NoError(t, storage.SaveDocuments([]*models.Document{
		sampleDoc("doc_1", "a.md", 0, []float32{1}),
		sampleDoc("doc_2", "a.md", 1, nil),
		pdf,
	}))

	stats, err := storage.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 2, stats.IndexedDocuments)
	assert.Equal(t, 2, stats.SourceFiles)
	assert.Equal(t, 2, stats.DocumentsBySource[models.SourceTypeMarkdown])
	assert.Equal(t, 1, stats.DocumentsBySource[models.SourceTypePDF])
}

func TestClearAll(t *testing.T) {
	storage := newTestDocumentStorage(t)

	require.NoError(t, storage.SaveDocuments([]*models.Document{
		sampleDoc("doc_1", "a.md", 0, nil),
		sampleDoc("doc_2", "b.md", 0, nil),
	}))

	require.NoError(t, storage.ClearAll())

	count, err := storage.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
