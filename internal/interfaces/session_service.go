package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/respondeo/internal/models"
)

// ErrSessionNotFound is returned when a session ID has no stored state
var ErrSessionNotFound = errors.New("session not found")

// SessionService manages chat session state: the append-only display log and
// the parallel LLM-facing history
type SessionService interface {
	// Create starts a new empty session, seeded with the assistant greeting
	Create(ctx context.Context) (*models.ChatSession, error)

	// Get returns a session by ID, ErrSessionNotFound if absent
	Get(ctx context.Context, id string) (*models.ChatSession, error)

	// GetOrCreate returns the session if it exists, otherwise creates one.
	// An empty id always creates.
	GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error)

	// AppendTurn appends a display turn to the session log. Seq is assigned
	// by the service; turns are never rewritten.
	AppendTurn(ctx context.Context, sessionID string, turn models.ConversationTurn) (*models.ConversationTurn, error)

	// AppendHistory appends an LLM-facing message pair record
	AppendHistory(ctx context.Context, sessionID string, msg models.HistoryMessage) error

	// History returns the LLM-facing history, most recent limit messages.
	// limit <= 0 returns everything.
	History(ctx context.Context, sessionID string, limit int) ([]models.HistoryMessage, error)

	// List returns all sessions ordered by most recently updated
	List(ctx context.Context) ([]*models.ChatSession, error)

	// Delete removes a session and its state
	Delete(ctx context.Context, id string) error
}
