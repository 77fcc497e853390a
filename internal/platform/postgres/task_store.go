package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/platform/logger"
	"github.com/pvgrid/helioserve/internal/store"
	"github.com/pvgrid/helioserve/internal/task"
)

// TaskHydrator rebuilds an executable task from its persisted type and
// payload. It is how recovered rows regain their execution logic after
// a restart.
type TaskHydrator func(taskType string, payload []byte) (task.Task, error)

// PostgresTaskStore implements the task.TaskStore interface using PostgreSQL
type PostgresTaskStore struct {
	db       store.DBTX
	hydrator TaskHydrator
}

// NewPostgresTaskStore creates a new PostgresTaskStore
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// SetHydrator installs the function used to turn recovered rows back
// into executable tasks. Without one, recovered tasks fail on Execute.
func (s *PostgresTaskStore) SetHydrator(h TaskHydrator) {
	s.hydrator = h
}

// WithTx returns a copy of the store that runs its queries on the given
// transaction
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{db: tx, hydrator: s.hydrator}
}

// SaveTask persists a task to the database
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", err)
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Task not found, treat as a no-op
		log.Warn("no task found with ID to update status", "task_id", taskID)
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status, optionally
// restricted to tasks whose last update is older than the given duration
func (s *PostgresTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []interface{}{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task

	for rows.Next() {
		var dbTask databaseTask
		var errorMessage sql.NullString

		if err := rows.Scan(
			&dbTask.id,
			&dbTask.taskType,
			&dbTask.payload,
			&dbTask.status,
			&errorMessage,
			&dbTask.createdAt,
			&dbTask.updatedAt,
		); err != nil {
			log.Error("failed to scan task row",
				"status", status,
				"error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		dbTask.errorMessage = errorMessage.String

		tasks = append(tasks, s.hydrate(&dbTask, log))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// hydrate converts a persisted row into an executable task where a
// hydrator is installed, falling back to the inert row representation
func (s *PostgresTaskStore) hydrate(dbTask *databaseTask, log *slog.Logger) task.Task {
	if s.hydrator == nil {
		return dbTask
	}

	hydrated, err := s.hydrator(dbTask.taskType, dbTask.payload)
	if err != nil {
		log.Warn("failed to hydrate recovered task",
			"task_id", dbTask.id,
			"task_type", dbTask.taskType,
			"error", err)
		return dbTask
	}

	// Preserve the persisted identity so status updates target the
	// original row rather than a freshly generated ID.
	return &recoveredTask{Task: hydrated, id: dbTask.id, status: dbTask.status}
}

// databaseTask is the inert representation of a persisted task. It
// carries identity and payload but no execution logic.
type databaseTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

func (t *databaseTask) ID() uuid.UUID          { return t.id }
func (t *databaseTask) Type() string           { return t.taskType }
func (t *databaseTask) Payload() []byte        { return t.payload }
func (t *databaseTask) Status() task.TaskStatus { return t.status }

// Execute fails for rows that were never hydrated into concrete tasks
func (t *databaseTask) Execute(ctx context.Context) error {
	return errors.New("no execution function defined for recovered task")
}

// recoveredTask wraps a hydrated task so it keeps the identity and
// status of the database row it was recovered from
type recoveredTask struct {
	task.Task
	id     uuid.UUID
	status task.TaskStatus
}

func (t *recoveredTask) ID() uuid.UUID          { return t.id }
func (t *recoveredTask) Status() task.TaskStatus { return t.status }
