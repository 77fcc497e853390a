package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/platform/logger"
	"github.com/pvgrid/helioserve/internal/store"
)

// PostgresSiteStore implements the store.SiteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSiteStore struct {
	db store.DBTX
}

// NewPostgresSiteStore creates a new PostgreSQL implementation of the
// SiteStore interface.
func NewPostgresSiteStore(db store.DBTX) *PostgresSiteStore {
	return &PostgresSiteStore{db: db}
}

// Ensure PostgresSiteStore implements store.SiteStore interface
var _ store.SiteStore = (*PostgresSiteStore)(nil)

// WithTx implements store.SiteStore.WithTx
func (s *PostgresSiteStore) WithTx(tx *sql.Tx) store.SiteStore {
	return &PostgresSiteStore{db: tx}
}

const siteColumns = `id, user_id, name, latitude, longitude, altitude, timezone, created_at, updated_at`

// Create implements store.SiteStore.Create
func (s *PostgresSiteStore) Create(ctx context.Context, site *domain.Site) error {
	log := logger.FromContext(ctx)

	if err := site.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO sites (` + siteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		site.ID,
		site.UserID,
		site.Name,
		site.Latitude,
		site.Longitude,
		site.Altitude,
		nullString(site.Timezone),
		site.CreatedAt,
		site.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create site",
			"site_id", site.ID,
			"user_id", site.UserID,
			"error", err)
		return MapUniqueViolation(err, "site name", "sites_user_id_name_key", store.ErrSiteNameExists)
	}

	return nil
}

// GetByID implements store.SiteStore.GetByID
func (s *PostgresSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	site, err := scanSite(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrSiteNotFound
		}
		return nil, err
	}
	return site, nil
}

// ListByUser implements store.SiteStore.ListByUser
func (s *PostgresSiteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Site, error) {
	log := logger.FromContext(ctx)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list sites",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}
	return sites, nil
}

// Update implements store.SiteStore.Update
func (s *PostgresSiteStore) Update(ctx context.Context, site *domain.Site) error {
	log := logger.FromContext(ctx)

	if err := site.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE sites
		SET name = $1, latitude = $2, longitude = $3, altitude = $4, timezone = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		site.Name,
		site.Latitude,
		site.Longitude,
		site.Altitude,
		nullString(site.Timezone),
		time.Now().UTC(),
		site.ID,
	)
	if err != nil {
		log.Error("failed to update site",
			"site_id", site.ID,
			"error", err)
		return MapUniqueViolation(err, "site name", "sites_user_id_name_key", store.ErrSiteNameExists)
	}

	if err := CheckRowsAffected(result, "site"); err != nil {
		return store.ErrSiteNotFound
	}
	return nil
}

// Delete implements store.SiteStore.Delete
func (s *PostgresSiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete site",
			"site_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "site"); err != nil {
		return store.ErrSiteNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*domain.Site, error) {
	var site domain.Site
	var timezone sql.NullString

	err := row.Scan(
		&site.ID,
		&site.UserID,
		&site.Name,
		&site.Latitude,
		&site.Longitude,
		&site.Altitude,
		&timezone,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	site.Timezone = timezone.String
	return &site, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
