package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/events"
)

// TaskFactory creates tasks for a given simulation run
type TaskFactory interface {
	CreateTask(runID uuid.UUID) (Task, error)
}

// TaskSubmitter persists and enqueues tasks for background processing
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns simulation run request events into tasks and hands them to
// the runner.
type TaskFactoryEventHandler struct {
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the
// given task factory to create tasks and submits them to the runner
func NewTaskFactoryEventHandler(
	factory TaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeSimulationRun {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		RunID string `json:"run_id"`
	}

	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		h.logger.Error("invalid run ID",
			"error", err,
			"run_id", payload.RunID,
			"event_id", event.ID)
		return fmt.Errorf("invalid run ID: %w", err)
	}

	tsk, err := h.factory.CreateTask(runID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"run_id", runID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, tsk); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", tsk.ID(),
			"run_id", runID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", tsk.ID(),
		"run_id", runID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
