package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/config"
	"github.com/pvgrid/helioserve/internal/events"
	"github.com/pvgrid/helioserve/internal/paramdb"
	"github.com/pvgrid/helioserve/internal/platform/postgres"
	"github.com/pvgrid/helioserve/internal/service"
	"github.com/pvgrid/helioserve/internal/service/auth"
	"github.com/pvgrid/helioserve/internal/store"
	"github.com/pvgrid/helioserve/internal/task"
)

// application holds the shared application dependencies so wiring and
// cleanup happen in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore       store.UserStore
	siteStore       store.SiteStore
	systemStore     store.SystemStore
	simulationStore store.SimulationStore
	taskStore       *postgres.PostgresTaskStore

	// Services
	jwtService        auth.JWTService
	userService       service.UserService
	siteService       *service.SiteService
	systemService     *service.SystemService
	simulationService *service.SimulationService

	// Parameter databases
	catalog *paramdb.Catalog

	// Background execution
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates an application instance with all dependencies
// initialized and the task runner started.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db)
	app.siteStore = postgres.NewPostgresSiteStore(db)
	app.systemStore = postgres.NewPostgresSystemStore(db)
	app.simulationStore = postgres.NewPostgresSimulationStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	app.catalog, err = paramdb.LoadCatalog(cfg.ParamDB.ModuleCSV, cfg.ParamDB.InverterCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameter databases: %w", err)
	}
	if app.catalog.Modules != nil {
		logger.Info("module parameter database loaded", "count", app.catalog.Modules.Len())
	}
	if app.catalog.Inverters != nil {
		logger.Info("inverter parameter database loaded", "count", app.catalog.Inverters.Len())
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.userService = service.NewUserService(app.userStore, db, 0, logger)
	app.siteService = service.NewSiteService(app.siteStore, db, logger)
	app.systemService = service.NewSystemService(
		app.systemStore, app.siteStore, app.catalog, db, logger)
	app.simulationService = service.NewSimulationService(
		app.simulationStore, app.systemStore, app.siteStore,
		app.catalog, app.eventEmitter, db, logger)

	// The simulation service doubles as the executor the task layer
	// calls back into.
	taskFactory := task.NewSimulationRunTaskFactory(app.simulationService, logger)

	// Tasks recovered from the database need their execution function
	// reattached before the runner can process them.
	app.taskStore.SetHydrator(func(taskType string, payload []byte) (task.Task, error) {
		if taskType != task.TaskTypeSimulationRun {
			return nil, fmt.Errorf("unknown task type %q", taskType)
		}
		var p struct {
			RunID uuid.UUID `json:"run_id"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode task payload: %w", err)
		}
		return taskFactory.CreateTask(p.RunID)
	})

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	handler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(handler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
