package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
)

// SystemStore defines the interface for PV system data persistence.
type SystemStore interface {
	// Create saves a new system to the store.
	// Returns ErrSystemNameExists if the site already has a system with
	// the same name.
	Create(ctx context.Context, system *domain.System) error

	// GetByID retrieves a system by its unique ID.
	// Returns ErrSystemNotFound if the system does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.System, error)

	// ListBySite retrieves all systems installed at the given site,
	// newest first.
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.System, error)

	// Update modifies an existing system.
	// Returns ErrSystemNotFound if the system does not exist.
	Update(ctx context.Context, system *domain.System) error

	// Delete removes a system and, through the schema's cascade, its
	// simulation runs.
	// Returns ErrSystemNotFound if the system does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new SystemStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SystemStore
}
