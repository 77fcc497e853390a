package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// SimulationRunTaskFactory creates SimulationRunTask instances
type SimulationRunTaskFactory struct {
	executor SimulationExecutor
	logger   *slog.Logger
}

// NewSimulationRunTaskFactory creates a new factory for SimulationRunTasks
func NewSimulationRunTaskFactory(
	executor SimulationExecutor,
	logger *slog.Logger,
) *SimulationRunTaskFactory {
	return &SimulationRunTaskFactory{
		executor: executor,
		logger:   logger.With("component", "simulation_run_task_factory"),
	}
}

// CreateTask creates a new SimulationRunTask for the specified run
func (f *SimulationRunTaskFactory) CreateTask(runID uuid.UUID) (Task, error) {
	return NewSimulationRunTask(runID, f.executor, f.logger)
}
