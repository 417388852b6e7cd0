// Package app wires the application's dependencies: storage, file
// store, extraction services, pipeline and HTTP handlers.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/handlers"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/services/extract"
	"github.com/ternarybob/folio/internal/services/pipeline"
	"github.com/ternarybob/folio/internal/storage/badger"
	"github.com/ternarybob/folio/internal/storage/files"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	FileStore      interfaces.FileStore

	// Extraction services
	TextExtractor   interfaces.TextExtractor
	TableDetector   interfaces.TableDetector
	ImageRasterizer interfaces.ImageRasterizer
	PipelineService interfaces.PipelineService
	Janitor         *pipeline.Janitor

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	BookHandler    *handlers.BookHandler
	ProcessHandler *handlers.ProcessHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	fileStore, err := files.NewStore(logger, &cfg.Storage.Files)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	app.FileStore = fileStore

	app.TextExtractor = extract.NewTextExtractor(logger, cfg.Pipeline.MaxPDFSize)
	app.TableDetector = extract.NewTableDetector(logger)
	app.ImageRasterizer = extract.NewImageRasterizer(logger, fileStore, cfg.Pipeline.ImageScale, cfg.Pipeline.MinImageSize)

	app.PipelineService = pipeline.NewService(
		logger,
		storageManager,
		fileStore,
		app.TextExtractor,
		app.TableDetector,
		app.ImageRasterizer,
		cfg.Pipeline.Timeout,
	)

	app.Janitor = pipeline.NewJanitor(logger, storageManager, app.PipelineService, cfg.Pipeline.Timeout)
	if err := app.Janitor.Start(cfg.Pipeline.SweepSchedule); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to start stuck-book janitor: %w", err)
	}

	app.APIHandler = handlers.NewAPIHandler()
	app.BookHandler = handlers.NewBookHandler(storageManager, fileStore, app.PipelineService, cfg.Upload.MaxFileSize, logger)
	app.ProcessHandler = handlers.NewProcessHandler(storageManager, app.PipelineService, logger)

	logger.Info().
		Str("badger_path", cfg.Storage.Badger.Path).
		Str("files_path", cfg.Storage.Files.Path).
		Msg("Application initialization complete")

	return app, nil
}

// Close shuts down background work and releases storage handles
func (a *App) Close() error {
	if a.Janitor != nil {
		a.Janitor.Stop()
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
