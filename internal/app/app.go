package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/services/chat"
	"github.com/ternarybob/respondeo/internal/services/documents"
	"github.com/ternarybob/respondeo/internal/services/embeddings"
	"github.com/ternarybob/respondeo/internal/services/events"
	"github.com/ternarybob/respondeo/internal/services/export"
	"github.com/ternarybob/respondeo/internal/services/ingest"
	"github.com/ternarybob/respondeo/internal/services/llm"
	"github.com/ternarybob/respondeo/internal/services/scheduler"
	"github.com/ternarybob/respondeo/internal/services/search"
	"github.com/ternarybob/respondeo/internal/services/sessions"
	"github.com/ternarybob/respondeo/internal/storage"
)

// reindexJobName is the scheduler job that periodically rebuilds the index
const reindexJobName = "reindex"

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	EventService     interfaces.EventService
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	SearchService    interfaces.SearchService
	DocumentService  interfaces.DocumentService
	SessionService   interfaces.SessionService
	ChatService      interfaces.ChatService
	IngestService    interfaces.IngestService
	ExportService    interfaces.ExportService
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ChatHandler     *handlers.ChatHandler
	SessionHandler  *handlers.SessionHandler
	DocumentHandler *handlers.DocumentHandler
	IngestHandler   *handlers.IngestHandler
	WSHandler       *handlers.WebSocketHandler
	PageHandler     *handlers.PageHandler
}

// New initializes the application with all dependencies.
// Initialization is the only place a failure halts the process: once the
// server is up, chat requests substitute diagnostics instead of failing.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Event service and WebSocket handler come first so every later
	// service can publish UI events
	app.EventService = events.NewService(app.Logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, &app.Config.WebSocket, app.Logger)

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	if err := app.initScheduler(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	if cfg.Knowledge.IndexOnStartup {
		common.SafeGo(app.Logger, "startup-index", func() {
			if _, err := app.IngestService.IndexAll(context.Background()); err != nil {
				app.Logger.Warn().Err(err).Msg("Startup index run failed")
			}
		})
	}

	logger.Info().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Str("knowledge_dir", cfg.Knowledge.Dir).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// Load API keys from .env into the KV store before LLM init so
	// ResolveAPIKey can find them
	if err := a.StorageManager.LoadEnvFile(context.Background(), ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	var err error

	a.LLMService, err = llm.NewLLMService(a.Config, a.StorageManager.KVStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	// A failed health check leaves the service wired: chat requests will
	// surface substituted diagnostics until the provider recovers
	if err := a.LLMService.HealthCheck(context.Background()); err != nil {
		a.Logger.Warn().Err(err).Msg("LLM health check failed, answers will degrade until the provider is reachable")
	}

	a.EmbeddingService = embeddings.NewService(
		a.LLMService,
		a.Config.Gemini.EmbeddingModel,
		a.Config.Gemini.EmbeddingDims,
		a.Logger,
	)

	a.SearchService = search.NewVectorSearchService(
		a.EmbeddingService,
		a.StorageManager.DocumentStorage(),
		&a.Config.Retrieval,
		a.Logger,
	)

	a.DocumentService = documents.NewService(
		a.StorageManager.DocumentStorage(),
		a.EmbeddingService,
		a.Logger,
	)

	a.SessionService = sessions.NewService(a.StorageManager.SessionStorage(), a.Logger)

	a.ChatService = chat.NewService(
		a.LLMService,
		a.SearchService,
		a.SessionService,
		a.EventService,
		a.Config,
		a.Logger,
	)

	a.IngestService = ingest.NewService(
		&a.Config.Knowledge,
		a.StorageManager.DocumentStorage(),
		a.EmbeddingService,
		a.EventService,
		a.Logger,
	)

	a.ExportService = export.NewService(a.SessionService, a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler(common.GetVersion(), common.GetBuild(), a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Config.Chat.MaxMessageSize, a.Logger)
	a.SessionHandler = handlers.NewSessionHandler(a.SessionService, a.ExportService, a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, a.SearchService, a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.Logger)

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// initScheduler creates the cron scheduler and registers the periodic
// re-index job when a schedule is configured. The ingest handler is created
// here because it reports scheduler state alongside run state.
func (a *App) initScheduler() error {
	svc := scheduler.NewService(a.Logger)
	a.SchedulerService = svc

	if schedule := a.Config.Knowledge.ReindexSchedule; schedule != "" {
		err := svc.RegisterJob(reindexJobName, schedule, func() error {
			_, err := a.IngestService.IndexAll(context.Background())
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to register reindex job: %w", err)
		}

		if err := svc.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		a.Logger.Info().
			Str("schedule", schedule).
			Msg("Periodic re-indexing enabled")
	} else {
		a.Logger.Debug().Msg("No reindex schedule configured, scheduler idle")
	}

	a.IngestHandler = handlers.NewIngestHandler(a.IngestService, a.SchedulerService, a.Logger)
	return nil
}

// Close gracefully shuts down all application components
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application...")

	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
