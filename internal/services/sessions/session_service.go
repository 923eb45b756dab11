package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// greeting seeds every new session's conversation log so the UI has an
// opening assistant message to display
var greeting = "Hello. I am the internal document assistant. Choose a mode and ask a question: document search finds the files that answer it, inquiry answers directly."

// Service manages chat sessions backed by persistent storage. Turn appends
// are serialized per service instance so Seq assignment stays monotonic.
type Service struct {
	storage interfaces.SessionStorage
	logger  arbor.ILogger
	mu      sync.Mutex
}

// NewService creates a session service
func NewService(storage interfaces.SessionStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Create starts a new session seeded with the assistant greeting
func (s *Service) Create(ctx context.Context) (*models.ChatSession, error) {
	now := time.Now()
	session := &models.ChatSession{
		ID: common.NewSessionID(),
		Turns: []models.ConversationTurn{
			{
				ID:        common.NewTurnID(),
				Seq:       0,
				Role:      models.TurnRoleAssistant,
				Content:   greeting,
				CreatedAt: now,
			},
		},
		History:   []models.HistoryMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.Turns[0].SessionID = session.ID

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Str("session_id", session.ID).Msg("Created chat session")
	return session, nil
}

// Get returns a session by ID
func (s *Service) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	return s.storage.GetSession(ctx, id)
}

// GetOrCreate returns the existing session or creates a fresh one. An empty
// id always creates.
func (s *Service) GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error) {
	if id == "" {
		return s.Create(ctx)
	}

	session, err := s.storage.GetSession(ctx, id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		return s.Create(ctx)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AppendTurn appends a display turn to the session log. The service assigns
// ID, SessionID, Seq, and CreatedAt; existing turns are never touched.
func (s *Service) AppendTurn(ctx context.Context, sessionID string, turn models.ConversationTurn) (*models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turn.ID = common.NewTurnID()
	turn.SessionID = sessionID
	turn.Seq = len(session.Turns)
	turn.CreatedAt = time.Now()

	session.Turns = append(session.Turns, turn)

	// First user message titles the session
	if session.Title == "" && turn.Role == models.TurnRoleUser {
		session.Title = titleFromMessage(turn.Content)
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to append turn: %w", err)
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("turn_id", turn.ID).
		Int("seq", turn.Seq).
		Str("role", string(turn.Role)).
		Msg("Appended conversation turn")

	return &turn, nil
}

// AppendHistory appends an LLM-facing message to the session's history
func (s *Service) AppendHistory(ctx context.Context, sessionID string, msg models.HistoryMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.History = append(session.History, msg)

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to append history message: %w", err)
	}
	return nil
}

// History returns the LLM-facing history, trimmed to the most recent limit
// messages. limit <= 0 returns everything.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]models.HistoryMessage, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := session.History
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// List returns all sessions, most recently updated first
func (s *Service) List(ctx context.Context) ([]*models.ChatSession, error) {
	return s.storage.ListSessions(ctx)
}

// Delete removes a session and its state
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", id).Msg("Deleted chat session")
	return nil
}

// titleFromMessage derives a short session title from the first user message
func titleFromMessage(message string) string {
	title := strings.TrimSpace(message)
	if idx := strings.IndexByte(title, '\n'); idx > 0 {
		title = title[:idx]
	}
	const maxTitle = 60
	if len(title) > maxTitle {
		title = strings.TrimSpace(title[:maxTitle]) + "..."
	}
	return title
}
