package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilExecutor = errors.New("simulation executor cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
	ErrEmptyRunID  = errors.New("run ID cannot be empty")
)

// SimulationExecutor defines the interface for running a persisted
// simulation run through the model chain. The task package only
// orchestrates; the service layer owns the actual simulation logic.
type SimulationExecutor interface {
	// ExecuteRun loads the run, executes the model chain over its
	// weather series and persists results or failure on the run record
	ExecuteRun(ctx context.Context, runID uuid.UUID) error
}

// simulationRunPayload represents the serialized data stored in the task
type simulationRunPayload struct {
	RunID uuid.UUID `json:"run_id"`
}

// SimulationRunTask implements the Task interface for executing a
// simulation run in the background
type SimulationRunTask struct {
	id       uuid.UUID
	runID    uuid.UUID
	executor SimulationExecutor
	logger   *slog.Logger
	status   TaskStatus
}

// NewSimulationRunTask creates a new simulation run task
func NewSimulationRunTask(
	runID uuid.UUID,
	executor SimulationExecutor,
	logger *slog.Logger,
) (*SimulationRunTask, error) {
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if runID == uuid.Nil {
		return nil, ErrEmptyRunID
	}

	return &SimulationRunTask{
		id:       uuid.New(),
		runID:    runID,
		executor: executor,
		logger:   logger.With("task_type", TaskTypeSimulationRun, "run_id", runID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SimulationRunTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *SimulationRunTask) Type() string {
	return TaskTypeSimulationRun
}

// Payload returns the task data as a byte slice
func (t *SimulationRunTask) Payload() []byte {
	payload := simulationRunPayload{
		RunID: t.runID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *SimulationRunTask) Status() TaskStatus {
	return t.status
}

// Execute runs the simulation by delegating to the executor. The
// executor is responsible for run status transitions and persisting
// results; this task only reflects the outcome in its own status.
func (t *SimulationRunTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting simulation run task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.executor.ExecuteRun(ctx, t.runID); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("simulation run failed", "error", err)
		return fmt.Errorf("failed to execute simulation run: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("simulation run task completed successfully")
	return nil
}
