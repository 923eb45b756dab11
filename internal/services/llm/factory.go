package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on
// the configured default provider.
//
// Embeddings always come from Gemini: Claude has no embedding endpoint, so
// selecting the claude provider yields a composite service that routes Chat
// to Claude and Embed to Gemini.
func NewLLMService(cfg *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderGemini:
		return NewGeminiService(cfg, kvStorage, logger)

	case common.LLMProviderClaude:
		chatService, err := NewClaudeService(&cfg.Claude, kvStorage, logger)
		if err != nil {
			return nil, err
		}
		embedService, err := NewGeminiService(cfg, kvStorage, logger)
		if err != nil {
			return nil, fmt.Errorf("claude provider still requires Gemini for embeddings: %w", err)
		}
		return &compositeService{chat: chatService, embed: embedService}, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (must be 'gemini' or 'claude')", provider)
	}
}

// compositeService routes Chat and Embed to different providers
type compositeService struct {
	chat  interfaces.LLMService
	embed interfaces.LLMService
}

func (s *compositeService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embed.Embed(ctx, text)
}

func (s *compositeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.chat.Chat(ctx, messages)
}

func (s *compositeService) HealthCheck(ctx context.Context) error {
	if err := s.chat.HealthCheck(ctx); err != nil {
		return err
	}
	return s.embed.HealthCheck(ctx)
}

func (s *compositeService) GetMode() interfaces.LLMMode {
	return s.chat.GetMode()
}

func (s *compositeService) Close() error {
	chatErr := s.chat.Close()
	embedErr := s.embed.Close()
	if chatErr != nil {
		return chatErr
	}
	return embedErr
}
