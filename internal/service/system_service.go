package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/paramdb"
	"github.com/pvgrid/helioserve/internal/store"
)

// SystemService provides PV system CRUD scoped to the requesting user.
// Module and inverter names are checked against the parameter catalog
// at write time so a simulation never trips over an unknown name.
type SystemService struct {
	systemStore store.SystemStore
	siteStore   store.SiteStore
	catalog     *paramdb.Catalog
	db          *sql.DB
	logger      *slog.Logger
}

// NewSystemService creates a new SystemService. The catalog may be nil
// when no parameter databases are configured; name resolution then
// fails for any named component.
func NewSystemService(
	systemStore store.SystemStore,
	siteStore store.SiteStore,
	catalog *paramdb.Catalog,
	db *sql.DB,
	logger *slog.Logger,
) *SystemService {
	return &SystemService{
		systemStore: systemStore,
		siteStore:   siteStore,
		catalog:     catalog,
		db:          db,
		logger:      logger.With("component", "system_service"),
	}
}

// CreateSystem creates a system at a site the user owns.
func (s *SystemService) CreateSystem(
	ctx context.Context,
	userID uuid.UUID,
	system *domain.System,
) (*domain.System, error) {
	site, err := s.siteStore.GetByID(ctx, system.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve site: %w", err)
	}
	if site.UserID != userID {
		return nil, ErrNotOwned
	}

	created, err := domain.NewSystem(system.SiteID, userID, system.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create system: %w", err)
	}
	applySystemFields(created, system)

	if err := created.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := s.resolveNames(created); err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.systemStore.WithTx(tx).Create(ctx, created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save system: %w", err)
	}

	s.logger.Info("system created",
		"system_id", created.ID,
		"site_id", created.SiteID,
		"user_id", userID)
	return created, nil
}

// GetSystem retrieves a system, enforcing ownership.
func (s *SystemService) GetSystem(
	ctx context.Context,
	userID, systemID uuid.UUID,
) (*domain.System, error) {
	system, err := s.systemStore.GetByID(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve system: %w", err)
	}
	if system.UserID != userID {
		return nil, ErrNotOwned
	}
	return system, nil
}

// ListSystems returns the systems at a site the user owns.
func (s *SystemService) ListSystems(
	ctx context.Context,
	userID, siteID uuid.UUID,
) ([]*domain.System, error) {
	site, err := s.siteStore.GetByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve site: %w", err)
	}
	if site.UserID != userID {
		return nil, ErrNotOwned
	}

	systems, err := s.systemStore.ListBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	return systems, nil
}

// UpdateSystem applies field changes to a system the user owns.
func (s *SystemService) UpdateSystem(
	ctx context.Context,
	userID uuid.UUID,
	system *domain.System,
) error {
	existing, err := s.systemStore.GetByID(ctx, system.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve system: %w", err)
	}
	if existing.UserID != userID {
		return ErrNotOwned
	}

	system.SiteID = existing.SiteID
	system.UserID = existing.UserID
	system.CreatedAt = existing.CreatedAt
	if err := system.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := s.resolveNames(system); err != nil {
		return err
	}

	if err := s.systemStore.Update(ctx, system); err != nil {
		return fmt.Errorf("failed to update system: %w", err)
	}
	return nil
}

// DeleteSystem removes a system the user owns along with its runs
// (schema cascade).
func (s *SystemService) DeleteSystem(ctx context.Context, userID, systemID uuid.UUID) error {
	system, err := s.systemStore.GetByID(ctx, systemID)
	if err != nil {
		return fmt.Errorf("failed to retrieve system: %w", err)
	}
	if system.UserID != userID {
		return ErrNotOwned
	}

	if err := s.systemStore.Delete(ctx, systemID); err != nil {
		return fmt.Errorf("failed to delete system: %w", err)
	}

	s.logger.Info("system deleted", "system_id", systemID, "user_id", userID)
	return nil
}

// resolveNames checks that referenced module and inverter names exist
// in the catalog. Embedded parameter maps take precedence and skip the
// lookup.
func (s *SystemService) resolveNames(system *domain.System) error {
	if len(system.ModuleParameters) == 0 && system.ModuleName != "" {
		if s.catalog == nil || s.catalog.Modules == nil {
			return fmt.Errorf("%w: no module database configured", ErrModuleNotFound)
		}
		if _, err := s.catalog.Modules.Get(system.ModuleName); err != nil {
			return fmt.Errorf("%w: %q", ErrModuleNotFound, system.ModuleName)
		}
	}
	if len(system.InverterParameters) == 0 && system.InverterName != "" {
		if s.catalog == nil || s.catalog.Inverters == nil {
			return fmt.Errorf("%w: no inverter database configured", ErrInverterNotFound)
		}
		if _, err := s.catalog.Inverters.Get(system.InverterName); err != nil {
			return fmt.Errorf("%w: %q", ErrInverterNotFound, system.InverterName)
		}
	}
	return nil
}

// applySystemFields copies the caller-settable fields from the request
// shape onto a freshly constructed system.
func applySystemFields(dst, src *domain.System) {
	dst.SurfaceTilt = src.SurfaceTilt
	dst.SurfaceAzimuth = src.SurfaceAzimuth
	dst.Tracking = src.Tracking
	dst.ModuleName = src.ModuleName
	dst.ModuleParameters = src.ModuleParameters
	dst.InverterName = src.InverterName
	dst.InverterParameters = src.InverterParameters
	if src.ModulesPerString > 0 {
		dst.ModulesPerString = src.ModulesPerString
	}
	if src.StringsPerInverter > 0 {
		dst.StringsPerInverter = src.StringsPerInverter
	}
	dst.RackingModel = src.RackingModel
	dst.TranspositionModel = src.TranspositionModel
	dst.SurfaceType = src.SurfaceType
	dst.Albedo = src.Albedo
	dst.DCModel = src.DCModel
	dst.ACModel = src.ACModel
}
