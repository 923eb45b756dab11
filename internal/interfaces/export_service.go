package interfaces

import (
	"context"
)

// ExportService renders chat transcripts to downloadable documents
type ExportService interface {
	// ExportSessionPDF renders the session's conversation log as a PDF
	ExportSessionPDF(ctx context.Context, sessionID string) ([]byte, error)
}
