package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/events"
)

type mockFactory struct {
	createFn func(runID uuid.UUID) (Task, error)
}

func (m *mockFactory) CreateTask(runID uuid.UUID) (Task, error) {
	return m.createFn(runID)
}

type mockSubmitter struct {
	submitFn  func(ctx context.Context, task Task) error
	submitted []Task
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	m.submitted = append(m.submitted, task)
	if m.submitFn != nil {
		return m.submitFn(ctx, task)
	}
	return nil
}

func runRequestEvent(t *testing.T, runID string) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(TaskTypeSimulationRun, map[string]string{
		"run_id": runID,
	})
	require.NoError(t, err)
	return event
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	logger := testLogger()

	t.Run("creates and submits task", func(t *testing.T) {
		runID := uuid.New()
		var factoryRunID uuid.UUID
		factory := &mockFactory{
			createFn: func(id uuid.UUID) (Task, error) {
				factoryRunID = id
				return newMockTask(), nil
			},
		}
		submitter := &mockSubmitter{}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		err := handler.HandleEvent(context.Background(), runRequestEvent(t, runID.String()))
		require.NoError(t, err)
		assert.Equal(t, runID, factoryRunID)
		assert.Len(t, submitter.submitted, 1)
	})

	t.Run("ignores unrelated event types", func(t *testing.T) {
		factory := &mockFactory{
			createFn: func(id uuid.UUID) (Task, error) {
				t.Fatal("factory should not be called")
				return nil, nil
			},
		}
		submitter := &mockSubmitter{}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		event, err := events.NewTaskRequestEvent("report_export", nil)
		require.NoError(t, err)

		assert.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("invalid run ID", func(t *testing.T) {
		factory := &mockFactory{
			createFn: func(id uuid.UUID) (Task, error) { return newMockTask(), nil },
		}
		handler := NewTaskFactoryEventHandler(factory, &mockSubmitter{}, logger)

		err := handler.HandleEvent(context.Background(), runRequestEvent(t, "not-a-uuid"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid run ID")
	})

	t.Run("factory error", func(t *testing.T) {
		factory := &mockFactory{
			createFn: func(id uuid.UUID) (Task, error) {
				return nil, errors.New("no executor")
			},
		}
		handler := NewTaskFactoryEventHandler(factory, &mockSubmitter{}, logger)

		err := handler.HandleEvent(context.Background(), runRequestEvent(t, uuid.NewString()))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create task")
	})

	t.Run("submit error", func(t *testing.T) {
		factory := &mockFactory{
			createFn: func(id uuid.UUID) (Task, error) { return newMockTask(), nil },
		}
		submitter := &mockSubmitter{
			submitFn: func(ctx context.Context, task Task) error {
				return ErrQueueFull
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		err := handler.HandleEvent(context.Background(), runRequestEvent(t, uuid.NewString()))
		assert.ErrorIs(t, err, ErrQueueFull)
	})
}
