package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
)

// SiteStore defines the interface for site data persistence.
type SiteStore interface {
	// Create saves a new site to the store.
	// Returns ErrSiteNameExists if the owner already has a site with the
	// same name.
	Create(ctx context.Context, site *domain.Site) error

	// GetByID retrieves a site by its unique ID.
	// Returns ErrSiteNotFound if the site does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error)

	// ListByUser retrieves all sites owned by the given user, newest
	// first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Site, error)

	// Update modifies an existing site.
	// Returns ErrSiteNotFound if the site does not exist.
	Update(ctx context.Context, site *domain.Site) error

	// Delete removes a site and, through the schema's cascade, its
	// systems and their simulation runs.
	// Returns ErrSiteNotFound if the site does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new SiteStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SiteStore
}
