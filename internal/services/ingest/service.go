package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service builds the document index from the knowledge directory. Files are
// loaded, normalized to markdown, chunked, embedded, and stored as documents
// keyed by their relative source path.
type Service struct {
	config           *common.KnowledgeConfig
	documentStorage  interfaces.DocumentStorage
	embeddingService interfaces.EmbeddingService
	eventService     interfaces.EventService
	loader           *loader
	logger           arbor.ILogger
	running          atomic.Bool
}

// NewService creates the ingest service. eventService may be nil.
func NewService(
	config *common.KnowledgeConfig,
	documentStorage interfaces.DocumentStorage,
	embeddingService interfaces.EmbeddingService,
	eventService interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:           config,
		documentStorage:  documentStorage,
		embeddingService: embeddingService,
		eventService:     eventService,
		loader:           newLoader(logger),
		logger:           logger,
	}
}

// IsRunning reports whether an index run is in progress
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// IndexAll walks the knowledge directory and indexes every supported file.
// Files whose content hash matches the stored chunks are skipped; chunks for
// files no longer on disk are removed.
func (s *Service) IndexAll(ctx context.Context) (*interfaces.IngestResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("index run already in progress")
	}
	defer s.running.Store(false)

	start := time.Now()
	result := &interfaces.IngestResult{}

	s.logger.Info().Str("dir", s.config.Dir).Msg("Starting knowledge index run")
	s.publish(ctx, interfaces.EventIndexStarted, map[string]interface{}{
		"dir": s.config.Dir,
	})

	files, err := s.collectFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to scan knowledge directory: %w", err)
	}
	result.FilesSeen = len(files)

	seen := make(map[string]bool, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel := s.relPath(path)
		seen[rel] = true

		hash, err := hashFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", rel).Msg("Failed to hash file, skipping")
			result.FilesFailed++
			continue
		}

		if s.isUnchanged(rel, hash) {
			result.FilesSkipped++
			continue
		}

		chunks, err := s.indexFile(ctx, path, rel, hash)
		if err != nil {
			s.logger.Error().Err(err).Str("path", rel).Msg("Failed to index file")
			result.FilesFailed++
			continue
		}

		result.FilesIndexed++
		result.ChunksStored += chunks

		s.publish(ctx, interfaces.EventIndexProgress, map[string]interface{}{
			"file":      rel,
			"processed": i + 1,
			"total":     len(files),
		})
	}

	removed, err := s.removeStale(seen)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to remove stale chunks")
	}
	result.ChunksRemoved = removed

	result.Duration = time.Since(start)

	s.logger.Info().
		Int("seen", result.FilesSeen).
		Int("indexed", result.FilesIndexed).
		Int("skipped", result.FilesSkipped).
		Int("failed", result.FilesFailed).
		Int("chunks_stored", result.ChunksStored).
		Int("chunks_removed", result.ChunksRemoved).
		Dur("duration", result.Duration).
		Msg("Knowledge index run completed")

	s.publish(ctx, interfaces.EventIndexCompleted, result)

	return result, nil
}

// IndexFile indexes a single file unconditionally, replacing its chunks
func (s *Service) IndexFile(ctx context.Context, path string) (int, error) {
	hash, err := hashFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to hash file: %w", err)
	}
	return s.indexFile(ctx, path, s.relPath(path), hash)
}

func (s *Service) indexFile(ctx context.Context, path, rel, hash string) (int, error) {
	loaded, err := s.loader.Load(path)
	if err != nil {
		return 0, err
	}

	var docs []*models.Document
	chunkIndex := 0
	for _, page := range loaded.Pages {
		for _, chunk := range splitMarkdown(page.Markdown, s.config.ChunkSize, s.config.ChunkOverlap) {
			docs = append(docs, &models.Document{
				ID:              common.NewDocumentID(),
				SourceType:      loaded.SourceType,
				SourcePath:      rel,
				Title:           loaded.Title,
				ContentMarkdown: chunk,
				ChunkIndex:      chunkIndex,
				Page:            page.Page,
				ContentHash:     hash,
			})
			chunkIndex++
		}
	}

	if len(docs) == 0 {
		s.logger.Warn().Str("path", rel).Msg("File produced no indexable content")
		return 0, nil
	}

	if err := s.embeddingService.EmbedDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}

	// Replace existing chunks only after the new set is ready
	if _, err := s.documentStorage.DeleteDocumentsBySourcePath(rel); err != nil {
		return 0, fmt.Errorf("failed to remove previous chunks: %w", err)
	}
	if err := s.documentStorage.SaveDocuments(docs); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	s.logger.Debug().
		Str("path", rel).
		Str("source_type", loaded.SourceType).
		Int("chunks", len(docs)).
		Msg("Indexed file")

	return len(docs), nil
}

// collectFiles walks the knowledge directory and returns paths with a
// supported extension, sorted for stable run order
func (s *Service) collectFiles() ([]string, error) {
	extensions := make(map[string]bool, len(s.config.Extensions))
	for _, ext := range s.config.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(s.config.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.config.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		if extensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// isUnchanged reports whether the stored chunks for rel carry the same
// content hash
func (s *Service) isUnchanged(rel, hash string) bool {
	docs, err := s.documentStorage.GetDocumentsBySourcePath(rel)
	if err != nil || len(docs) == 0 {
		return false
	}
	return docs[0].ContentHash == hash
}

// removeStale deletes chunks for source paths no longer present on disk
func (s *Service) removeStale(seen map[string]bool) (int, error) {
	paths, err := s.documentStorage.ListSourcePaths()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range paths {
		if seen[path] {
			continue
		}
		count, err := s.documentStorage.DeleteDocumentsBySourcePath(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to delete stale chunks")
			continue
		}
		removed += count
		s.logger.Info().Str("path", path).Int("chunks", count).Msg("Removed chunks for deleted file")
	}

	return removed, nil
}

func (s *Service) relPath(path string) string {
	if rel, err := filepath.Rel(s.config.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish index event")
	}
}

func hashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
