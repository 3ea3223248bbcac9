package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/boxofficehq/boxoffice-api/internal/config"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/platform/logger"
	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/service/auth"
	"github.com/boxofficehq/boxoffice-api/internal/store"
	"github.com/boxofficehq/boxoffice-api/internal/task"
)

// application holds all long-lived dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sql.DB // nil when running on the in-memory stores

	jobStore    store.JobStore
	deviceStore store.DeviceStore
	orderStore  store.OrderStore

	orderService  service.OrderService
	exportService service.ExportService
	jwtService    auth.JWTService
	keyVerifier   auth.KeyVerifier

	emitter  *events.InMemoryEventEmitter
	registry *task.Registry
	runner   *task.Runner
}

// newApplication loads configuration and wires every component. The
// task runner is created but not started; Start launches its workers
// after recovery.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.URL != "",
		"events", len(cfg.Events.Capacities))

	app := &application{
		config: cfg,
		logger: appLogger,
	}

	if err := app.setupStores(); err != nil {
		return nil, err
	}

	app.orderService = service.NewOrderService(app.orderStore, cfg.Events.Capacities, appLogger)
	app.exportService = service.NewExportService(app.orderStore, appLogger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.keyVerifier = auth.NewBcryptVerifier()

	app.setupTaskPipeline()

	return app, nil
}

// setupStores selects the persistence backend. An empty database URL
// runs everything on the in-memory stores; otherwise jobs live in
// postgres and migrations run at startup.
func (app *application) setupStores() error {
	app.deviceStore = store.NewMemoryDeviceStore()
	app.orderStore = store.NewMemoryOrderStore()

	if app.config.Database.URL == "" {
		app.logger.Warn("no database configured, using in-memory job store")
		app.jobStore = store.NewMemoryJobStore()
		return nil
	}

	db, err := setupAppDatabase(app.config, app.logger)
	if err != nil {
		return err
	}

	if err := store.RunMigrations(db, app.logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app.db = db
	app.jobStore = store.NewPostgresJobStore(db)
	return nil
}

// setupTaskPipeline wires the registry, runner, emitter and event
// handler that carry jobs from the API to the workers.
func (app *application) setupTaskPipeline() {
	registry := task.NewRegistry()
	registry.Register(task.TaskTypeOrderPlacement, func(job *domain.Job) (task.Task, error) {
		return task.NewOrderPlacementTask(job, app.orderService, app.logger)
	})
	registry.Register(task.TaskTypeCheckinExport, func(job *domain.Job) (task.Task, error) {
		return task.NewCheckinExportTask(job, app.exportService, app.logger)
	})

	runnerConfig := task.RunnerConfig{
		WorkerCount:  app.config.Tasks.WorkerCount,
		QueueSize:    app.config.Tasks.QueueSize,
		StuckTaskAge: time.Duration(app.config.Tasks.StuckTaskAge) * time.Minute,
	}
	runner := task.NewRunner(app.jobStore, registry, runnerConfig, app.logger)

	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(task.NewJobEventHandler(app.jobStore, registry, runner, app.logger))

	app.registry = registry
	app.runner = runner
	app.emitter = emitter
}

// Start recovers interrupted jobs and launches the task workers.
func (app *application) Start() error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	return nil
}

// Stop shuts down the task workers and waits for running jobs.
func (app *application) Stop() {
	app.runner.Stop()
}

// Close releases held resources.
func (app *application) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}

// addr returns the listen address derived from configuration.
func (app *application) addr() string {
	return fmt.Sprintf(":%d", app.config.Server.Port)
}
