package chat

import (
	"context"
	"strings"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// condenseQuery rewrites a follow-up question into a standalone search query
// using the conversation history. With no history the question already stands
// alone, so the LLM round trip is skipped.
func (s *Service) condenseQuery(ctx context.Context, question string, history []models.HistoryMessage) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]interfaces.Message, 0, len(history)+2)
	messages = append(messages, interfaces.Message{
		Role:    "system",
		Content: CondenseQuestionPrompt,
	})
	for _, h := range history {
		messages = append(messages, interfaces.Message{
			Role:    h.Role,
			Content: h.Content,
		})
	}
	messages = append(messages, interfaces.Message{
		Role:    "user",
		Content: question,
	})

	rewritten, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, nil
	}

	s.logger.Debug().
		Str("original", question).
		Str("condensed", rewritten).
		Msg("Condensed follow-up question")

	return rewritten, nil
}
