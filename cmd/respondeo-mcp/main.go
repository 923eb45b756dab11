package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/services/embeddings"
	"github.com/ternarybob/respondeo/internal/services/llm"
	"github.com/ternarybob/respondeo/internal/services/search"
	"github.com/ternarybob/respondeo/internal/storage"
)

func main() {
	configPath := os.Getenv("RESPONDEO_CONFIG")
	if configPath == "" {
		configPath = "respondeo.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	llmService, err := llm.NewLLMService(config, storageManager.KVStorage(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM service")
	}

	embeddingService := embeddings.NewService(
		llmService,
		config.Gemini.EmbeddingModel,
		config.Gemini.EmbeddingDims,
		logger,
	)

	searchService := search.NewVectorSearchService(
		embeddingService,
		storageManager.DocumentStorage(),
		&config.Retrieval,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"respondeo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchDocumentsTool(), handleSearchDocuments(searchService, logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(storageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createGetSourceFileTool(), handleGetSourceFile(storageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createListSourceFilesTool(), handleListSourceFiles(storageManager.DocumentStorage(), logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
