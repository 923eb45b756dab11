package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// ChatRequest represents a single user message within a session
type ChatRequest struct {
	// Session the message belongs to. Empty starts a new session.
	SessionID string `json:"session_id,omitempty"`

	// User's message
	Message string `json:"message"`

	// Answering mode selected in the UI
	Mode models.ChatMode `json:"mode"`
}

// ChatResponse represents the assistant's reply to a chat request.
// Respond never fails at the transport level: LLM or retrieval errors are
// substituted with a diagnostic answer and IsError is set.
type ChatResponse struct {
	SessionID string `json:"session_id"`

	// Generated answer text (or a substituted diagnostic)
	Answer string `json:"answer"`

	// Advisory text shown under the answer (inquiry mode reference hint)
	Note string `json:"note,omitempty"`

	// Citations for the answer
	Sources []models.SourceRef `json:"sources,omitempty"`

	// Mode the answer was produced under
	Mode models.ChatMode `json:"mode"`

	// Model used
	Model string `json:"model,omitempty"`

	// Set when the answer is a substituted diagnostic rather than an LLM reply
	IsError bool `json:"is_error,omitempty"`
}

// ChatService produces assistant answers and maintains session history
type ChatService interface {
	// Respond answers a user message in the requested mode, appends both the
	// user turn and the assistant turn to the session, and returns the
	// assistant's reply. Failures in retrieval or generation yield a
	// diagnostic answer, not an error.
	Respond(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck verifies the chat service is operational
	HealthCheck(ctx context.Context) error
}
