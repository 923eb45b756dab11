package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// SessionHandler handles chat session HTTP requests
type SessionHandler struct {
	sessionService interfaces.SessionService
	exportService  interfaces.ExportService
	logger         arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService interfaces.SessionService, exportService interfaces.ExportService, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		exportService:  exportService,
		logger:         logger,
	}
}

// ListHandler handles GET /api/sessions, most recently updated first
func (h *SessionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sessions, err := h.sessionService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	// Summaries only; turn bodies come from the detail endpoint
	summaries := make([]map[string]interface{}, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, map[string]interface{}{
			"id":         s.ID,
			"title":      s.Title,
			"turns":      len(s.Turns),
			"created_at": s.CreatedAt,
			"updated_at": s.UpdatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// CreateHandler handles POST /api/sessions
func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, err := h.sessionService.Create(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

// SessionRoutes dispatches /api/sessions/{id} and /api/sessions/{id}/export
func (h *SessionHandler) SessionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	if len(parts) == 2 && parts[1] == "export" {
		h.exportHandler(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getHandler(w, r, id)
	case http.MethodDelete:
		h.deleteHandler(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SessionHandler) getHandler(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.sessionService.Get(r.Context(), id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to get session")
		WriteError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) deleteHandler(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.sessionService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to delete session")
		WriteError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	WriteSuccess(w, "Session deleted")
}

// exportHandler handles GET /api/sessions/{id}/export, returning a PDF transcript
func (h *SessionHandler) exportHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pdfBytes, err := h.exportService.ExportSessionPDF(r.Context(), id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to export session")
		WriteError(w, http.StatusInternalServerError, "Failed to export session")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
