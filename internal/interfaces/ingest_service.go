package interfaces

import (
	"context"
	"time"
)

// IngestResult summarizes a completed index run
type IngestResult struct {
	FilesSeen     int           `json:"files_seen"`
	FilesIndexed  int           `json:"files_indexed"`
	FilesSkipped  int           `json:"files_skipped"` // Unchanged since last run
	FilesFailed   int           `json:"files_failed"`
	ChunksStored  int           `json:"chunks_stored"`
	ChunksRemoved int           `json:"chunks_removed"` // Stale chunks for deleted files
	Duration      time.Duration `json:"duration"`
}

// IngestService builds and refreshes the document index from the knowledge
// directory
type IngestService interface {
	// IndexAll walks the knowledge directory and indexes every supported
	// file, skipping files whose content is unchanged since the last run
	IndexAll(ctx context.Context) (*IngestResult, error)

	// IndexFile indexes a single file, replacing any previous chunks for it
	IndexFile(ctx context.Context, path string) (int, error)

	// IsRunning reports whether an index run is in progress
	IsRunning() bool
}
