package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/platform/logger"
	"github.com/pvgrid/helioserve/internal/store"
)

// PostgresSimulationStore implements the store.SimulationStore interface
// using a PostgreSQL database as the storage backend. Weather series and
// results are stored as JSONB.
type PostgresSimulationStore struct {
	db store.DBTX
}

// NewPostgresSimulationStore creates a new PostgreSQL implementation of
// the SimulationStore interface.
func NewPostgresSimulationStore(db store.DBTX) *PostgresSimulationStore {
	return &PostgresSimulationStore{db: db}
}

// Ensure PostgresSimulationStore implements store.SimulationStore interface
var _ store.SimulationStore = (*PostgresSimulationStore)(nil)

// WithTx implements store.SimulationStore.WithTx
func (s *PostgresSimulationStore) WithTx(tx *sql.Tx) store.SimulationStore {
	return &PostgresSimulationStore{db: tx}
}

const simulationColumns = `id, system_id, user_id, status, weather, results, error_message,
	created_at, updated_at, started_at, completed_at`

// Create implements store.SimulationStore.Create
func (s *PostgresSimulationStore) Create(ctx context.Context, run *domain.SimulationRun) error {
	log := logger.FromContext(ctx)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO simulation_runs (` + simulationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.SystemID,
		run.UserID,
		run.Status,
		[]byte(run.Weather),
		nullBytes(run.Results),
		nullString(run.Error),
		run.CreatedAt,
		run.UpdatedAt,
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		log.Error("failed to create simulation run",
			"run_id", run.ID,
			"system_id", run.SystemID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.SimulationStore.GetByID
func (s *PostgresSimulationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulation_runs WHERE id = $1`

	run, err := scanSimulationRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrSimulationNotFound
		}
		return nil, err
	}
	return run, nil
}

// ListBySystem implements store.SimulationStore.ListBySystem
func (s *PostgresSimulationStore) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.SimulationRun, error) {
	log := logger.FromContext(ctx)

	query := `SELECT ` + simulationColumns + ` FROM simulation_runs WHERE system_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, systemID)
	if err != nil {
		log.Error("failed to list simulation runs",
			"system_id", systemID,
			"error", err)
		return nil, fmt.Errorf("failed to list simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SimulationRun
	for rows.Next() {
		run, err := scanSimulationRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulation run rows: %w", err)
	}
	return runs, nil
}

// Update implements store.SimulationStore.Update
func (s *PostgresSimulationStore) Update(ctx context.Context, run *domain.SimulationRun) error {
	log := logger.FromContext(ctx)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE simulation_runs
		SET status = $1, results = $2, error_message = $3, updated_at = $4,
			started_at = $5, completed_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		run.Status,
		nullBytes(run.Results),
		nullString(run.Error),
		run.UpdatedAt,
		run.StartedAt,
		run.CompletedAt,
		run.ID,
	)
	if err != nil {
		log.Error("failed to update simulation run",
			"run_id", run.ID,
			"status", run.Status,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "simulation run"); err != nil {
		return store.ErrSimulationNotFound
	}
	return nil
}

func scanSimulationRun(row rowScanner) (*domain.SimulationRun, error) {
	var run domain.SimulationRun
	var weather, results []byte
	var errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.SystemID,
		&run.UserID,
		&run.Status,
		&weather,
		&results,
		&errorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Weather = weather
	run.Results = results
	run.Error = errorMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		run.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}

	return &run, nil
}

// nullBytes maps an empty JSON payload to SQL NULL.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
