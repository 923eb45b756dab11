package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// APIHandler handles system-level API requests
type APIHandler struct {
	version string
	build   string
	logger  arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(version, build string, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		version: version,
		build:   build,
		logger:  logger,
	}
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
		"build":   h.build,
	})
}

// HealthHandler handles GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// NotFoundHandler handles unmatched API routes
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
