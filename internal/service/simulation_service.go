package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/events"
	"github.com/pvgrid/helioserve/internal/paramdb"
	"github.com/pvgrid/helioserve/internal/solar/modelchain"
	"github.com/pvgrid/helioserve/internal/solar/tracking"
	"github.com/pvgrid/helioserve/internal/store"
	"github.com/pvgrid/helioserve/internal/task"
)

// SimulationService queues simulation runs for background execution and
// executes them when the task machinery calls back. It also offers a
// synchronous Preview path that never touches the database.
type SimulationService struct {
	simulationStore store.SimulationStore
	systemStore     store.SystemStore
	siteStore       store.SiteStore
	catalog         *paramdb.Catalog
	emitter         events.EventEmitter
	db              *sql.DB
	logger          *slog.Logger
	timeFunc        func() time.Time
}

// NewSimulationService creates a new SimulationService.
func NewSimulationService(
	simulationStore store.SimulationStore,
	systemStore store.SystemStore,
	siteStore store.SiteStore,
	catalog *paramdb.Catalog,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) *SimulationService {
	return &SimulationService{
		simulationStore: simulationStore,
		systemStore:     systemStore,
		siteStore:       siteStore,
		catalog:         catalog,
		emitter:         emitter,
		db:              db,
		logger:          logger.With("component", "simulation_service"),
		timeFunc:        time.Now,
	}
}

// CreateRun validates ownership, persists a pending run and emits the
// event that gets it picked up by the task runner.
func (s *SimulationService) CreateRun(
	ctx context.Context,
	userID, systemID uuid.UUID,
	weather json.RawMessage,
) (*domain.SimulationRun, error) {
	system, err := s.systemStore.GetByID(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve system: %w", err)
	}
	if system.UserID != userID {
		return nil, ErrNotOwned
	}

	// Reject weather that will not parse before persisting the run
	if _, err := decodeWeather(weather); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	run, err := domain.NewSimulationRun(systemID, userID, weather)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err = runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.simulationStore.WithTx(tx).Create(ctx, run)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeSimulationRun, map[string]string{
		"run_id": run.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build run event: %w", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		// The run stays pending; crash recovery or a retry will pick it
		// up, so surface the error without rolling the run back.
		s.logger.Error("failed to emit run event",
			"error", err,
			"run_id", run.ID)
		return run, fmt.Errorf("run %s queued but not dispatched: %w", run.ID, err)
	}

	s.logger.Info("simulation run queued",
		"run_id", run.ID,
		"system_id", systemID,
		"user_id", userID)
	return run, nil
}

// GetRun retrieves a run, enforcing ownership.
func (s *SimulationService) GetRun(
	ctx context.Context,
	userID, runID uuid.UUID,
) (*domain.SimulationRun, error) {
	run, err := s.simulationStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run: %w", err)
	}
	if run.UserID != userID {
		return nil, ErrNotOwned
	}
	return run, nil
}

// ListRuns returns the runs for a system the user owns, newest first.
func (s *SimulationService) ListRuns(
	ctx context.Context,
	userID, systemID uuid.UUID,
) ([]*domain.SimulationRun, error) {
	system, err := s.systemStore.GetByID(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve system: %w", err)
	}
	if system.UserID != userID {
		return nil, ErrNotOwned
	}

	runs, err := s.simulationStore.ListBySystem(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// PreviewInput is a self-contained simulation request: a full system
// description plus the weather series, with optional catalog names in
// place of embedded parameter maps.
type PreviewInput struct {
	Config       modelchain.SystemConfig `json:"config"`
	ModuleName   string                  `json:"module_name,omitempty"`
	InverterName string                  `json:"inverter_name,omitempty"`
	Weather      []modelchain.Weather    `json:"weather"`
}

// Preview runs the model chain synchronously without persisting
// anything.
func (s *SimulationService) Preview(
	ctx context.Context,
	input PreviewInput,
) (*modelchain.Result, error) {
	cfg := input.Config
	if err := s.fillParameters(&cfg, input.ModuleName, input.InverterName); err != nil {
		return nil, err
	}

	result, err := modelchain.Run(ctx, cfg, input.Weather)
	if err != nil {
		return nil, fmt.Errorf("preview failed: %w", err)
	}
	return result, nil
}

// ExecuteRun loads a queued run, executes the model chain over its
// weather series and persists the outcome. It satisfies
// task.SimulationExecutor.
func (s *SimulationService) ExecuteRun(ctx context.Context, runID uuid.UUID) error {
	run, err := s.simulationStore.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	run.MarkRunning(s.timeFunc().UTC())
	if err := s.simulationStore.Update(ctx, run); err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}

	results, err := s.executeChain(ctx, run)
	now := s.timeFunc().UTC()
	if err != nil {
		run.MarkFailed(now, err.Error())
		if updateErr := s.simulationStore.Update(ctx, run); updateErr != nil {
			s.logger.Error("failed to persist run failure",
				"error", updateErr,
				"run_id", runID)
		}
		return err
	}

	run.MarkCompleted(now, results)
	if err := s.simulationStore.Update(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run results: %w", err)
	}

	s.logger.Info("simulation run completed", "run_id", runID)
	return nil
}

// executeChain assembles the chain config from the run's system and
// site and produces the serialized results.
func (s *SimulationService) executeChain(
	ctx context.Context,
	run *domain.SimulationRun,
) (json.RawMessage, error) {
	system, err := s.systemStore.GetByID(ctx, run.SystemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load system: %w", err)
	}
	site, err := s.siteStore.GetByID(ctx, system.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}

	cfg, err := s.buildChainConfig(system, site)
	if err != nil {
		return nil, err
	}

	weather, err := decodeWeather(run.Weather)
	if err != nil {
		return nil, fmt.Errorf("invalid weather series: %w", err)
	}

	result, err := modelchain.Run(ctx, cfg, weather)
	if err != nil {
		return nil, fmt.Errorf("model chain failed: %w", err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return encoded, nil
}

// buildChainConfig maps a persisted system and its site onto the model
// chain's configuration, resolving catalog names into parameter maps.
func (s *SimulationService) buildChainConfig(
	system *domain.System,
	site *domain.Site,
) (modelchain.SystemConfig, error) {
	altitude := site.Altitude
	cfg := modelchain.SystemConfig{
		Latitude:  site.Latitude,
		Longitude: site.Longitude,
		Altitude:  &altitude,

		SurfaceTilt:    system.SurfaceTilt,
		SurfaceAzimuth: system.SurfaceAzimuth,

		ModuleParameters:   system.ModuleParameters,
		InverterParameters: system.InverterParameters,

		ModulesPerString:   system.ModulesPerString,
		StringsPerInverter: system.StringsPerInverter,

		RackingModel:       system.RackingModel,
		TranspositionModel: system.TranspositionModel,
		SurfaceType:        system.SurfaceType,
		Albedo:             system.Albedo,

		DCModel: system.DCModel,
		ACModel: system.ACModel,
	}

	if system.Tracking != nil {
		cfg.Tracking = &tracking.SingleAxisConfig{
			AxisTilt:    system.Tracking.AxisTilt,
			AxisAzimuth: system.Tracking.AxisAzimuth,
			MaxAngle:    system.Tracking.MaxAngle,
			Backtrack:   system.Tracking.Backtrack,
			GCR:         system.Tracking.GCR,
		}
	}

	if err := s.fillParameters(&cfg, system.ModuleName, system.InverterName); err != nil {
		return modelchain.SystemConfig{}, err
	}

	return cfg, nil
}

// fillParameters resolves catalog names into parameter maps when the
// config does not embed them directly.
func (s *SimulationService) fillParameters(
	cfg *modelchain.SystemConfig,
	moduleName, inverterName string,
) error {
	if len(cfg.ModuleParameters) == 0 && moduleName != "" {
		if s.catalog == nil || s.catalog.Modules == nil {
			return fmt.Errorf("%w: no module database configured", ErrModuleNotFound)
		}
		params, err := s.catalog.Modules.Get(moduleName)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrModuleNotFound, moduleName)
		}
		cfg.ModuleParameters = params
	}
	if len(cfg.InverterParameters) == 0 && inverterName != "" {
		if s.catalog == nil || s.catalog.Inverters == nil {
			return fmt.Errorf("%w: no inverter database configured", ErrInverterNotFound)
		}
		params, err := s.catalog.Inverters.Get(inverterName)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInverterNotFound, inverterName)
		}
		cfg.InverterParameters = params
	}
	return nil
}

// decodeWeather parses the serialized weather series and rejects empty
// ones.
func decodeWeather(raw json.RawMessage) ([]modelchain.Weather, error) {
	var weather []modelchain.Weather
	if err := json.Unmarshal(raw, &weather); err != nil {
		return nil, err
	}
	if len(weather) == 0 {
		return nil, fmt.Errorf("weather series is empty")
	}
	return weather, nil
}

var _ task.SimulationExecutor = (*SimulationService)(nil)
