package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service renders chat transcripts to PDF for download
type Service struct {
	sessionService interfaces.SessionService
	logger         arbor.ILogger
}

// NewService creates an export service
func NewService(sessionService interfaces.SessionService, logger arbor.ILogger) *Service {
	return &Service{
		sessionService: sessionService,
		logger:         logger,
	}
}

// ExportSessionPDF renders the session's conversation log as a PDF
func (s *Service) ExportSessionPDF(ctx context.Context, sessionID string) ([]byte, error) {
	session, err := s.sessionService.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	markdown := buildTranscript(session)

	pdfBytes, err := markdownToPDF(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to export session %s: %w", sessionID, err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("turns", len(session.Turns)).
		Int("pdf_size", len(pdfBytes)).
		Msg("Exported session transcript")

	return pdfBytes, nil
}

// buildTranscript formats the conversation log as a markdown document
func buildTranscript(session *models.ChatSession) string {
	var b strings.Builder

	title := session.Title
	if title == "" {
		title = "Chat Transcript"
	}
	b.WriteString("# " + title + "\n\n")
	b.WriteString(fmt.Sprintf("Session %s, started %s\n\n", session.ID, session.CreatedAt.Format("2006-01-02 15:04")))

	for _, turn := range session.Turns {
		b.WriteString("---\n\n")

		switch turn.Role {
		case models.TurnRoleUser:
			b.WriteString("## You\n\n")
		default:
			b.WriteString("## Assistant\n\n")
		}

		if turn.Mode.IsValid() {
			b.WriteString(fmt.Sprintf("*Mode: %s*\n\n", turn.Mode))
		}

		b.WriteString(turn.Content + "\n\n")

		if turn.Note != "" {
			b.WriteString(turn.Note + "\n\n")
		}
		if len(turn.Sources) > 0 {
			b.WriteString("Sources:\n\n")
			for _, src := range turn.Sources {
				b.WriteString("- " + src.Label() + "\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
