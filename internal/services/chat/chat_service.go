package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service answers user messages over the document index. Respond substitutes
// a diagnostic answer for any retrieval or generation failure instead of
// returning an error, so callers always get something to display.
type Service struct {
	llmService     interfaces.LLMService
	searchService  interfaces.SearchService
	sessionService interfaces.SessionService
	eventService   interfaces.EventService
	logger         arbor.ILogger
	topK           int
	historyLimit   int
	modelName      string
}

// NewService creates the chat service. eventService may be nil when no
// listeners are wired.
func NewService(
	llmService interfaces.LLMService,
	searchService interfaces.SearchService,
	sessionService interfaces.SessionService,
	eventService interfaces.EventService,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	modelName := config.Gemini.Model
	if config.LLM.DefaultProvider == common.LLMProviderClaude {
		modelName = config.Claude.Model
	}

	return &Service{
		llmService:     llmService,
		searchService:  searchService,
		sessionService: sessionService,
		eventService:   eventService,
		logger:         logger,
		topK:           config.Retrieval.TopK,
		historyLimit:   config.Chat.HistoryLimit,
		modelName:      modelName,
	}
}

// Respond answers a user message in the requested mode. The user turn is
// always appended to the session log; the assistant turn carries either the
// generated answer or a substituted diagnostic. LLM-facing history is only
// extended when generation succeeds.
func (s *Service) Respond(ctx context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	if req == nil || req.Message == "" {
		return nil, fmt.Errorf("chat request requires a message")
	}

	session, err := s.sessionService.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("mode", string(req.Mode)).
		Int("message_len", len(req.Message)).
		Msg("Processing chat request")

	s.appendTurn(ctx, session.ID, models.ConversationTurn{
		Role:    models.TurnRoleUser,
		Content: req.Message,
		Mode:    req.Mode,
	})

	if !req.Mode.IsValid() {
		s.logger.Warn().
			Str("session_id", session.ID).
			Str("mode", string(req.Mode)).
			Msg("Request carried an unknown mode")
		return s.record(ctx, session.ID, "", &interfaces.ChatResponse{
			SessionID: session.ID,
			Answer:    UnknownModeAnswer,
			Mode:      req.Mode,
		})
	}

	history, err := s.sessionService.History(ctx, session.ID, s.historyLimit)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", session.ID).
			Msg("Failed to load conversation history, continuing without it")
		history = nil
	}

	query, err := s.condenseQuery(ctx, req.Message, history)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", session.ID).
			Msg("Failed to condense follow-up question, searching with the raw message")
		query = req.Message
	}

	start := time.Now()
	docs, err := s.searchService.Search(ctx, query, s.topK)
	if err != nil {
		s.logger.Error().Err(err).
			Str("session_id", session.ID).
			Msg("Document retrieval failed")
		return s.record(ctx, session.ID, "", &interfaces.ChatResponse{
			SessionID: session.ID,
			Answer:    BuildErrorAnswer(RetrievalErrorMessage),
			Mode:      req.Mode,
			IsError:   true,
		})
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Int("retrieved", len(docs)).
		Dur("duration", time.Since(start)).
		Msg("Retrieved context documents")

	answer, err := s.llmService.Chat(ctx, s.buildMessages(req.Mode, req.Message, history, docs))
	if err != nil {
		s.logger.Error().Err(err).
			Str("session_id", session.ID).
			Msg("Answer generation failed")
		return s.record(ctx, session.ID, "", &interfaces.ChatResponse{
			SessionID: session.ID,
			Answer:    BuildErrorAnswer(GenerationErrorMessage),
			Mode:      req.Mode,
			Sources:   buildSourceRefs(docs),
			IsError:   true,
		})
	}

	response := &interfaces.ChatResponse{
		SessionID: session.ID,
		Answer:    answer,
		Mode:      req.Mode,
		Model:     s.modelName,
	}

	switch req.Mode {
	case models.ChatModeDocumentSearch:
		if answer != NoMatchAnswer {
			response.Sources = buildSourceRefs(docs)
		}
	case models.ChatModeInquiry:
		if answer != InquiryNoMatchAnswer {
			response.Sources = buildSourceRefs(docs)
			if len(response.Sources) > 0 {
				response.Note = InquiryNote
			}
		}
	}

	resp, _ := s.record(ctx, session.ID, req.Message, response)

	s.logger.Info().
		Str("session_id", session.ID).
		Str("mode", string(req.Mode)).
		Int("sources", len(resp.Sources)).
		Int("answer_len", len(resp.Answer)).
		Msg("Chat request completed")

	return resp, nil
}

// record appends the assistant turn to the session log and, when generation
// succeeded, extends the LLM-facing history with the exchanged pair.
// userMessage is empty for substituted diagnostics so failed exchanges never
// enter the LLM-facing history. Log failures never block the response.
func (s *Service) record(ctx context.Context, sessionID string, userMessage string, resp *interfaces.ChatResponse) (*interfaces.ChatResponse, error) {
	s.appendTurn(ctx, sessionID, models.ConversationTurn{
		Role:    models.TurnRoleAssistant,
		Content: resp.Answer,
		Mode:    resp.Mode,
		Note:    resp.Note,
		Sources: resp.Sources,
		IsError: resp.IsError,
	})

	if userMessage != "" {
		pair := []models.HistoryMessage{
			{Role: "user", Content: userMessage},
			{Role: "assistant", Content: resp.Answer},
		}
		for _, msg := range pair {
			if err := s.sessionService.AppendHistory(ctx, sessionID, msg); err != nil {
				s.logger.Warn().Err(err).
					Str("session_id", sessionID).
					Msg("Failed to update conversation history")
				break
			}
		}
	}

	s.publishTurn(ctx, sessionID, resp)

	return resp, nil
}

func (s *Service) appendTurn(ctx context.Context, sessionID string, turn models.ConversationTurn) {
	if _, err := s.sessionService.AppendTurn(ctx, sessionID, turn); err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", sessionID).
			Str("role", string(turn.Role)).
			Msg("Failed to append conversation turn")
	}
}

func (s *Service) publishTurn(ctx context.Context, sessionID string, resp *interfaces.ChatResponse) {
	if s.eventService == nil {
		return
	}
	err := s.eventService.Publish(ctx, interfaces.Event{
		Type: interfaces.EventChatTurn,
		Payload: map[string]interface{}{
			"session_id": sessionID,
			"mode":       string(resp.Mode),
			"is_error":   resp.IsError,
			"sources":    len(resp.Sources),
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish chat turn event")
	}
}

// buildMessages assembles the LLM conversation: mode-specific system prompt
// with the context block appended, prior history, then the user's message
func (s *Service) buildMessages(mode models.ChatMode, userMessage string, history []models.HistoryMessage, docs []*models.ScoredDocument) []interfaces.Message {
	systemPrompt := DocumentSearchSystemPrompt
	if mode == models.ChatModeInquiry {
		systemPrompt = InquirySystemPrompt
	}

	if contextText := buildContextText(docs); contextText != "" {
		systemPrompt = systemPrompt + "\n\n" + contextText
	}

	messages := make([]interfaces.Message, 0, len(history)+2)
	messages = append(messages, interfaces.Message{Role: "system", Content: systemPrompt})
	for _, h := range history {
		messages = append(messages, interfaces.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, interfaces.Message{Role: "user", Content: userMessage})

	return messages
}

// HealthCheck verifies the chat pipeline's dependencies are reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.llmService.HealthCheck(ctx); err != nil {
		return fmt.Errorf("LLM service unhealthy: %w", err)
	}
	return nil
}
