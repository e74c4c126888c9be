// -----------------------------------------------------------------------
// Application - Dependency wiring and lifecycle
// -----------------------------------------------------------------------

package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/handlers"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/services/answer"
	"github.com/ternarybob/quaestor/internal/services/embeddings"
	"github.com/ternarybob/quaestor/internal/services/ingest"
	"github.com/ternarybob/quaestor/internal/services/llm"
	"github.com/ternarybob/quaestor/internal/services/pdf"
	"github.com/ternarybob/quaestor/internal/services/retrieval"
	"github.com/ternarybob/quaestor/internal/services/uploads"
	"github.com/ternarybob/quaestor/internal/services/vectorstore/qdrant"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Core services
	ProviderFactory  *llm.ProviderFactory
	UploadStore      interfaces.UploadStore
	DocumentLoader   interfaces.DocumentLoader
	EmbeddingService interfaces.EmbeddingService
	VectorIndex      interfaces.VectorIndex
	AnswerService    *answer.Service

	// Pipelines
	IngestPipeline    *ingest.Pipeline
	RetrievalPipeline *retrieval.Pipeline

	// Background maintenance
	Janitor *uploads.Janitor

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	IngestHandler *handlers.IngestHandler
	QueryHandler  *handlers.QueryHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initPipelines()
	app.initHandlers()

	if err := app.startJanitor(); err != nil {
		return nil, fmt.Errorf("failed to start upload janitor: %w", err)
	}

	logger.Info().
		Str("collection", cfg.Qdrant.Collection).
		Str("provider", cfg.LLM.DefaultProvider).
		Msg("Application initialization complete")

	return app, nil
}

// initServices wires the provider, storage, and index services
func (a *App) initServices() error {
	a.ProviderFactory = llm.NewProviderFactory(&a.Config.Gemini, &a.Config.Claude, &a.Config.LLM, a.Logger)

	store, err := uploads.NewStore(a.Config.Uploads.Dir, a.Config.Uploads.MaxFileSize, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create upload store: %w", err)
	}
	a.UploadStore = store

	a.DocumentLoader = pdf.NewLoader(a.Logger)
	a.EmbeddingService = embeddings.NewService(a.ProviderFactory, a.Logger)
	a.VectorIndex = qdrant.NewClient(&a.Config.Qdrant, a.Logger)
	a.AnswerService = answer.NewService(a.ProviderFactory, a.Config.Retrieval.MaxContextChars, a.Logger)

	return nil
}

// initPipelines wires the ingestion and retrieval flows
func (a *App) initPipelines() {
	a.IngestPipeline = ingest.NewPipeline(
		a.DocumentLoader,
		a.EmbeddingService,
		a.VectorIndex,
		a.UploadStore,
		a.Config.Qdrant.Collection,
		a.Logger,
	)

	a.RetrievalPipeline = retrieval.NewPipeline(
		a.EmbeddingService,
		a.VectorIndex,
		a.Config.Qdrant.Collection,
		a.Config.Retrieval.TopK,
		a.Logger,
	)
}

// initHandlers wires the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.ProviderFactory, a.VectorIndex, a.Config.Qdrant.Collection, a.Logger)
	a.IngestHandler = handlers.NewIngestHandler(a.UploadStore, a.IngestPipeline, a.Config.Uploads.MaxFileSize, a.Logger)
	a.QueryHandler = handlers.NewQueryHandler(a.RetrievalPipeline, a.AnswerService, a.Logger)
}

// startJanitor begins periodic cleanup of stale uploads left behind by
// crashed requests. An empty schedule disables it.
func (a *App) startJanitor() error {
	maxAge := 30 * time.Minute
	if a.Config.Uploads.MaxAge != "" {
		parsed, err := time.ParseDuration(a.Config.Uploads.MaxAge)
		if err != nil {
			return fmt.Errorf("invalid uploads.max_age: %w", err)
		}
		maxAge = parsed
	}

	janitor := uploads.NewJanitor(a.UploadStore, a.Config.Uploads.JanitorSchedule, maxAge, a.Logger)
	if err := janitor.Start(); err != nil {
		return err
	}
	a.Janitor = janitor
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.Janitor != nil {
		a.Janitor.Stop()
	}
	if a.ProviderFactory != nil {
		if err := a.ProviderFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM provider")
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
