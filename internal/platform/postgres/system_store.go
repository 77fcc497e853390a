package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/platform/logger"
	"github.com/pvgrid/helioserve/internal/store"
)

// PostgresSystemStore implements the store.SystemStore interface
// using a PostgreSQL database as the storage backend. Parameter maps and
// tracker configuration are stored as JSONB.
type PostgresSystemStore struct {
	db store.DBTX
}

// NewPostgresSystemStore creates a new PostgreSQL implementation of the
// SystemStore interface.
func NewPostgresSystemStore(db store.DBTX) *PostgresSystemStore {
	return &PostgresSystemStore{db: db}
}

// Ensure PostgresSystemStore implements store.SystemStore interface
var _ store.SystemStore = (*PostgresSystemStore)(nil)

// WithTx implements store.SystemStore.WithTx
func (s *PostgresSystemStore) WithTx(tx *sql.Tx) store.SystemStore {
	return &PostgresSystemStore{db: tx}
}

const systemColumns = `id, site_id, user_id, name, surface_tilt, surface_azimuth, tracking,
	module_name, module_parameters, inverter_name, inverter_parameters,
	modules_per_string, strings_per_inverter,
	racking_model, transposition_model, surface_type, albedo, dc_model, ac_model,
	created_at, updated_at`

// Create implements store.SystemStore.Create
func (s *PostgresSystemStore) Create(ctx context.Context, system *domain.System) error {
	log := logger.FromContext(ctx)

	if err := system.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cols, err := marshalSystemJSON(system)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO systems (` + systemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = s.db.ExecContext(ctx, query,
		system.ID,
		system.SiteID,
		system.UserID,
		system.Name,
		system.SurfaceTilt,
		system.SurfaceAzimuth,
		cols.tracking,
		nullString(system.ModuleName),
		cols.moduleParams,
		nullString(system.InverterName),
		cols.inverterParams,
		system.ModulesPerString,
		system.StringsPerInverter,
		nullString(system.RackingModel),
		nullString(system.TranspositionModel),
		nullString(system.SurfaceType),
		system.Albedo,
		nullString(system.DCModel),
		nullString(system.ACModel),
		system.CreatedAt,
		system.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create system",
			"system_id", system.ID,
			"site_id", system.SiteID,
			"error", err)
		return MapUniqueViolation(err, "system name", "systems_site_id_name_key", store.ErrSystemNameExists)
	}

	return nil
}

// GetByID implements store.SystemStore.GetByID
func (s *PostgresSystemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.System, error) {
	query := `SELECT ` + systemColumns + ` FROM systems WHERE id = $1`

	system, err := scanSystem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrSystemNotFound
		}
		return nil, err
	}
	return system, nil
}

// ListBySite implements store.SystemStore.ListBySite
func (s *PostgresSystemStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.System, error) {
	log := logger.FromContext(ctx)

	query := `SELECT ` + systemColumns + ` FROM systems WHERE site_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, siteID)
	if err != nil {
		log.Error("failed to list systems",
			"site_id", siteID,
			"error", err)
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	defer rows.Close()

	var systems []*domain.System
	for rows.Next() {
		system, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		systems = append(systems, system)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system rows: %w", err)
	}
	return systems, nil
}

// Update implements store.SystemStore.Update
func (s *PostgresSystemStore) Update(ctx context.Context, system *domain.System) error {
	log := logger.FromContext(ctx)

	if err := system.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cols, err := marshalSystemJSON(system)
	if err != nil {
		return err
	}

	query := `
		UPDATE systems
		SET name = $1, surface_tilt = $2, surface_azimuth = $3, tracking = $4,
			module_name = $5, module_parameters = $6,
			inverter_name = $7, inverter_parameters = $8,
			modules_per_string = $9, strings_per_inverter = $10,
			racking_model = $11, transposition_model = $12, surface_type = $13,
			albedo = $14, dc_model = $15, ac_model = $16, updated_at = $17
		WHERE id = $18
	`

	result, err := s.db.ExecContext(ctx, query,
		system.Name,
		system.SurfaceTilt,
		system.SurfaceAzimuth,
		cols.tracking,
		nullString(system.ModuleName),
		cols.moduleParams,
		nullString(system.InverterName),
		cols.inverterParams,
		system.ModulesPerString,
		system.StringsPerInverter,
		nullString(system.RackingModel),
		nullString(system.TranspositionModel),
		nullString(system.SurfaceType),
		system.Albedo,
		nullString(system.DCModel),
		nullString(system.ACModel),
		time.Now().UTC(),
		system.ID,
	)
	if err != nil {
		log.Error("failed to update system",
			"system_id", system.ID,
			"error", err)
		return MapUniqueViolation(err, "system name", "systems_site_id_name_key", store.ErrSystemNameExists)
	}

	if err := CheckRowsAffected(result, "system"); err != nil {
		return store.ErrSystemNotFound
	}
	return nil
}

// Delete implements store.SystemStore.Delete
func (s *PostgresSystemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM systems WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete system",
			"system_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "system"); err != nil {
		return store.ErrSystemNotFound
	}
	return nil
}

// systemJSONColumns holds the JSONB column values for a system row.
// Absent values are nil so the columns store SQL NULL rather than the
// JSON literal null.
type systemJSONColumns struct {
	tracking       []byte
	moduleParams   []byte
	inverterParams []byte
}

func marshalSystemJSON(system *domain.System) (systemJSONColumns, error) {
	var cols systemJSONColumns
	var err error

	if system.Tracking != nil {
		if cols.tracking, err = json.Marshal(system.Tracking); err != nil {
			return cols, fmt.Errorf("failed to marshal tracking config: %w", err)
		}
	}
	if system.ModuleParameters != nil {
		if cols.moduleParams, err = json.Marshal(system.ModuleParameters); err != nil {
			return cols, fmt.Errorf("failed to marshal module parameters: %w", err)
		}
	}
	if system.InverterParameters != nil {
		if cols.inverterParams, err = json.Marshal(system.InverterParameters); err != nil {
			return cols, fmt.Errorf("failed to marshal inverter parameters: %w", err)
		}
	}
	return cols, nil
}

func scanSystem(row rowScanner) (*domain.System, error) {
	var system domain.System
	var tracking, moduleParams, inverterParams []byte
	var moduleName, inverterName, rackingModel, transpositionModel, surfaceType, dcModel, acModel sql.NullString
	var albedo sql.NullFloat64

	err := row.Scan(
		&system.ID,
		&system.SiteID,
		&system.UserID,
		&system.Name,
		&system.SurfaceTilt,
		&system.SurfaceAzimuth,
		&tracking,
		&moduleName,
		&moduleParams,
		&inverterName,
		&inverterParams,
		&system.ModulesPerString,
		&system.StringsPerInverter,
		&rackingModel,
		&transpositionModel,
		&surfaceType,
		&albedo,
		&dcModel,
		&acModel,
		&system.CreatedAt,
		&system.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	system.ModuleName = moduleName.String
	system.InverterName = inverterName.String
	system.RackingModel = rackingModel.String
	system.TranspositionModel = transpositionModel.String
	system.SurfaceType = surfaceType.String
	if albedo.Valid {
		a := albedo.Float64
		system.Albedo = &a
	}
	system.DCModel = dcModel.String
	system.ACModel = acModel.String

	if len(tracking) > 0 {
		system.Tracking = &domain.TrackingConfig{}
		if err := json.Unmarshal(tracking, system.Tracking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking config: %w", err)
		}
	}
	if len(moduleParams) > 0 {
		if err := json.Unmarshal(moduleParams, &system.ModuleParameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal module parameters: %w", err)
		}
	}
	if len(inverterParams) > 0 {
		if err := json.Unmarshal(inverterParams, &system.InverterParameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inverter parameters: %w", err)
		}
	}

	return &system, nil
}
