package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
)

// SimulationStore defines the interface for simulation run persistence.
type SimulationStore interface {
	// Create saves a new simulation run to the store.
	Create(ctx context.Context, run *domain.SimulationRun) error

	// GetByID retrieves a simulation run by its unique ID.
	// Returns ErrSimulationNotFound if the run does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error)

	// ListBySystem retrieves all runs for the given system, newest first.
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.SimulationRun, error)

	// Update persists status transitions, results and failure causes.
	// Returns ErrSimulationNotFound if the run does not exist.
	Update(ctx context.Context, run *domain.SimulationRun) error

	// WithTx returns a new SimulationStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) SimulationStore
}
