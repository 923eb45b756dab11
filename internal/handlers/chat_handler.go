package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService    interfaces.ChatService
	maxMessageSize int
	logger         arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, maxMessageSize int, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		maxMessageSize: maxMessageSize,
		logger:         logger,
	}
}

// ChatHandler handles POST /api/chat requests. Retrieval and generation
// failures never surface here: the service substitutes a diagnostic answer,
// so a well-formed request always gets a 200.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "Message field is required")
		return
	}
	if h.maxMessageSize > 0 && len(req.Message) > h.maxMessageSize {
		WriteError(w, http.StatusRequestEntityTooLarge, "Message exceeds the maximum allowed size")
		return
	}

	response, err := h.chatService.Respond(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to process chat request")
		WriteError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// HealthHandler handles GET /api/chat/health requests
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.chatService.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Chat service health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": true,
	})
}
