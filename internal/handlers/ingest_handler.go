package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// IngestHandler handles index management HTTP requests
type IngestHandler struct {
	ingestService    interfaces.IngestService
	schedulerService interfaces.SchedulerService
	logger           arbor.ILogger
}

// NewIngestHandler creates a new ingest handler. schedulerService may be nil
// when periodic re-indexing is disabled.
func NewIngestHandler(ingestService interfaces.IngestService, schedulerService interfaces.SchedulerService, logger arbor.ILogger) *IngestHandler {
	return &IngestHandler{
		ingestService:    ingestService,
		schedulerService: schedulerService,
		logger:           logger,
	}
}

// TriggerHandler handles POST /api/index, starting an index run in the
// background
func (h *IngestHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.ingestService.IsRunning() {
		WriteError(w, http.StatusConflict, "Index run already in progress")
		return
	}

	common.SafeGo(h.logger, "index-run", func() {
		if _, err := h.ingestService.IndexAll(context.Background()); err != nil {
			h.logger.Error().Err(err).Msg("Background index run failed")
		}
	})

	WriteStarted(w, "Index run started")
}

// StatusHandler handles GET /api/index/status
func (h *IngestHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := map[string]interface{}{
		"running": h.ingestService.IsRunning(),
	}
	if h.schedulerService != nil {
		status["jobs"] = h.schedulerService.GetAllJobStatuses()
	}

	WriteJSON(w, http.StatusOK, status)
}
