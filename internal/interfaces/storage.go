package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// DocumentStorage - interface for indexed document persistence
type DocumentStorage interface {
	// CRUD operations
	SaveDocument(doc *models.Document) error
	SaveDocuments(docs []*models.Document) error
	GetDocument(id string) (*models.Document, error)
	UpdateDocument(doc *models.Document) error
	DeleteDocument(id string) error

	// Source file operations
	GetDocumentsBySourcePath(sourcePath string) ([]*models.Document, error)
	DeleteDocumentsBySourcePath(sourcePath string) (int, error)
	ListSourcePaths() ([]string, error)

	// Search operations
	VectorSearch(embedding []float32, minSimilarity float64, limit int) ([]*models.ScoredDocument, error)

	// List operations
	ListDocuments(opts *ListOptions) ([]*models.Document, error)
	GetDocumentsBySource(sourceType string) ([]*models.Document, error)

	// Stats operations
	CountDocuments() (int, error)
	CountDocumentsBySource(sourceType string) (int, error)
	GetStats() (*models.DocumentStats, error)

	// Bulk operations
	ClearAll() error
}

// SessionStorage - interface for chat session persistence
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	ListSessions(ctx context.Context) ([]*models.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
	CountSessions(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	DocumentStorage() DocumentStorage
	SessionStorage() SessionStorage
	KVStorage() KeyValueStorage

	// LoadEnvFile loads KEY=value pairs from a .env file into the KV store
	LoadEnvFile(ctx context.Context, filePath string) error

	DB() interface{}
	Close() error
}
