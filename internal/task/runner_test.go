package task

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskStore implements the TaskStore interface for testing
type mockTaskStore struct {
	mu          sync.RWMutex
	tasks       map[uuid.UUID]Task
	statuses    map[uuid.UUID]TaskStatus
	statusTimes map[uuid.UUID]time.Time
	saveFn      func(ctx context.Context, task Task) error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		tasks:       make(map[uuid.UUID]Task),
		statuses:    make(map[uuid.UUID]TaskStatus),
		statusTimes: make(map[uuid.UUID]time.Time),
	}
}

func (s *mockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, task)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID()] = task
	s.statuses[task.ID()] = task.Status()
	s.statusTimes[task.ID()] = time.Now()
	return nil
}

func (s *mockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return errors.New("task not found")
	}
	s.statuses[taskID] = status
	s.statusTimes[taskID] = time.Now()
	return nil
}

func (s *mockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for id, task := range s.tasks {
		if s.statuses[id] == TaskStatusPending {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *mockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	var out []Task
	for id, task := range s.tasks {
		if s.statuses[id] != TaskStatusProcessing {
			continue
		}
		if olderThan == 0 || now.Sub(s.statusTimes[id]) > olderThan {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *mockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *mockTaskStore) statusOf(id uuid.UUID) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[id]
}

func (s *mockTaskStore) setStatus(id uuid.UUID, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	s.statusTimes[id] = time.Now()
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		store := newMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		task := newMockTask()
		err := runner.Submit(context.Background(), task)
		assert.NoError(t, err)

		pending, err := store.GetPendingTasks(context.Background())
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, task.ID(), pending[0].ID())
	})

	t.Run("queue full", func(t *testing.T) {
		store := newMockTaskStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(store, config, testLogger())

		require.NoError(t, runner.Submit(context.Background(), newMockTask()))

		err := runner.Submit(context.Background(), newMockTask())
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("store error", func(t *testing.T) {
		store := newMockTaskStore()
		store.saveFn = func(ctx context.Context, task Task) error {
			return errors.New("save failed")
		}
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

		err := runner.Submit(context.Background(), newMockTask())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})
}

func TestTaskRunner_ProcessesSubmittedTasks(t *testing.T) {
	store := newMockTaskStore()
	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 2
	runner := NewTaskRunner(store, config, testLogger())

	done := make(chan uuid.UUID, 3)
	tasks := make([]*mockTask, 3)
	for i := range tasks {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			done <- task.ID()
			return nil
		}
		tasks[i] = task
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	for _, task := range tasks {
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	executed := make(map[uuid.UUID]bool)
	for i := 0; i < len(tasks); i++ {
		select {
		case id := <-done:
			executed[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}

	for _, task := range tasks {
		assert.True(t, executed[task.ID()])
	}

	// Status updates race slightly behind the execute callback
	assert.Eventually(t, func() bool {
		for _, task := range tasks {
			if store.statusOf(task.ID()) != TaskStatusCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTaskRunner_FailedTaskIsMarkedFailed(t *testing.T) {
	store := newMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	var handlerCalled sync.WaitGroup
	handlerCalled.Add(1)
	runner.SetErrorHandler(func(task Task, err error) {
		handlerCalled.Done()
	})

	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		return errors.New("boom")
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	waitDone := make(chan struct{})
	go func() {
		handlerCalled.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("error handler was not called")
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(task.ID()) == TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTaskRunner_Recover(t *testing.T) {
	store := newMockTaskStore()

	// Seed the store as if a previous process crashed
	pendingTask := newMockTask()
	require.NoError(t, store.SaveTask(context.Background(), pendingTask))

	processingTask := newMockTask()
	require.NoError(t, store.SaveTask(context.Background(), processingTask))
	store.setStatus(processingTask.ID(), TaskStatusProcessing)

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
	require.NoError(t, runner.Recover())

	// The interrupted task is reset to pending
	assert.Equal(t, TaskStatusPending, store.statusOf(processingTask.ID()))

	// Both tasks are back on the queue
	queued := 0
	for {
		select {
		case <-runner.queue.GetChannel():
			queued++
		default:
			assert.Equal(t, 2, queued)
			return
		}
	}
}

func TestTaskRunner_StopClosesQueue(t *testing.T) {
	store := newMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	require.NoError(t, runner.Start())
	runner.Stop()

	err := runner.Submit(context.Background(), newMockTask())
	assert.ErrorIs(t, err, ErrQueueClosed)
}
