package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/store"
)

// SiteService provides site CRUD scoped to the requesting user.
type SiteService struct {
	siteStore store.SiteStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewSiteService creates a new SiteService.
func NewSiteService(siteStore store.SiteStore, db *sql.DB, logger *slog.Logger) *SiteService {
	return &SiteService{
		siteStore: siteStore,
		db:        db,
		logger:    logger.With("component", "site_service"),
	}
}

// CreateSite creates a site owned by the given user.
func (s *SiteService) CreateSite(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	latitude, longitude, altitude float64,
	timezone string,
) (*domain.Site, error) {
	site, err := domain.NewSite(userID, name, latitude, longitude, altitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	site.Timezone = timezone

	err = runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.siteStore.WithTx(tx).Create(ctx, site)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save site: %w", err)
	}

	s.logger.Info("site created", "site_id", site.ID, "user_id", userID)
	return site, nil
}

// GetSite retrieves a site, enforcing ownership.
func (s *SiteService) GetSite(
	ctx context.Context,
	userID, siteID uuid.UUID,
) (*domain.Site, error) {
	site, err := s.siteStore.GetByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve site: %w", err)
	}
	if site.UserID != userID {
		return nil, ErrNotOwned
	}
	return site, nil
}

// ListSites returns the user's sites, newest first.
func (s *SiteService) ListSites(ctx context.Context, userID uuid.UUID) ([]*domain.Site, error) {
	sites, err := s.siteStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// UpdateSite applies field changes to a site the user owns.
func (s *SiteService) UpdateSite(
	ctx context.Context,
	userID uuid.UUID,
	site *domain.Site,
) error {
	existing, err := s.siteStore.GetByID(ctx, site.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve site: %w", err)
	}
	if existing.UserID != userID {
		return ErrNotOwned
	}

	site.UserID = existing.UserID
	site.CreatedAt = existing.CreatedAt
	if err := site.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.siteStore.Update(ctx, site); err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	return nil
}

// DeleteSite removes a site the user owns along with its systems and
// runs (schema cascade).
func (s *SiteService) DeleteSite(ctx context.Context, userID, siteID uuid.UUID) error {
	site, err := s.siteStore.GetByID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to retrieve site: %w", err)
	}
	if site.UserID != userID {
		return ErrNotOwned
	}

	if err := s.siteStore.Delete(ctx, siteID); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	s.logger.Info("site deleted", "site_id", siteID, "user_id", userID)
	return nil
}
