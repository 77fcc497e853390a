package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/store"
)

// MockSiteStore implements store.SiteStore for testing.
type MockSiteStore struct {
	Sites map[uuid.UUID]*domain.Site
}

// NewMockSiteStore creates a new mock store with initialized defaults.
func NewMockSiteStore() *MockSiteStore {
	return &MockSiteStore{Sites: make(map[uuid.UUID]*domain.Site)}
}

// Create implements the SiteStore interface.
func (m *MockSiteStore) Create(ctx context.Context, site *domain.Site) error {
	for _, existing := range m.Sites {
		if existing.UserID == site.UserID && existing.Name == site.Name {
			return store.ErrSiteNameExists
		}
	}
	m.Sites[site.ID] = site
	return nil
}

// GetByID implements the SiteStore interface.
func (m *MockSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	site, ok := m.Sites[id]
	if !ok {
		return nil, store.ErrSiteNotFound
	}
	return site, nil
}

// ListByUser implements the SiteStore interface.
func (m *MockSiteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Site, error) {
	var sites []*domain.Site
	for _, site := range m.Sites {
		if site.UserID == userID {
			sites = append(sites, site)
		}
	}
	return sites, nil
}

// Update implements the SiteStore interface.
func (m *MockSiteStore) Update(ctx context.Context, site *domain.Site) error {
	if _, ok := m.Sites[site.ID]; !ok {
		return store.ErrSiteNotFound
	}
	m.Sites[site.ID] = site
	return nil
}

// Delete implements the SiteStore interface.
func (m *MockSiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.Sites[id]; !ok {
		return store.ErrSiteNotFound
	}
	delete(m.Sites, id)
	return nil
}

// WithTx implements the SiteStore interface.
func (m *MockSiteStore) WithTx(tx *sql.Tx) store.SiteStore {
	return m
}

// MockSystemStore implements store.SystemStore for testing.
type MockSystemStore struct {
	Systems map[uuid.UUID]*domain.System
}

// NewMockSystemStore creates a new mock store with initialized defaults.
func NewMockSystemStore() *MockSystemStore {
	return &MockSystemStore{Systems: make(map[uuid.UUID]*domain.System)}
}

// Create implements the SystemStore interface.
func (m *MockSystemStore) Create(ctx context.Context, system *domain.System) error {
	for _, existing := range m.Systems {
		if existing.SiteID == system.SiteID && existing.Name == system.Name {
			return store.ErrSystemNameExists
		}
	}
	m.Systems[system.ID] = system
	return nil
}

// GetByID implements the SystemStore interface.
func (m *MockSystemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.System, error) {
	system, ok := m.Systems[id]
	if !ok {
		return nil, store.ErrSystemNotFound
	}
	return system, nil
}

// ListBySite implements the SystemStore interface.
func (m *MockSystemStore) ListBySite(
	ctx context.Context,
	siteID uuid.UUID,
) ([]*domain.System, error) {
	var systems []*domain.System
	for _, system := range m.Systems {
		if system.SiteID == siteID {
			systems = append(systems, system)
		}
	}
	return systems, nil
}

// Update implements the SystemStore interface.
func (m *MockSystemStore) Update(ctx context.Context, system *domain.System) error {
	if _, ok := m.Systems[system.ID]; !ok {
		return store.ErrSystemNotFound
	}
	m.Systems[system.ID] = system
	return nil
}

// Delete implements the SystemStore interface.
func (m *MockSystemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.Systems[id]; !ok {
		return store.ErrSystemNotFound
	}
	delete(m.Systems, id)
	return nil
}

// WithTx implements the SystemStore interface.
func (m *MockSystemStore) WithTx(tx *sql.Tx) store.SystemStore {
	return m
}

// MockSimulationStore implements store.SimulationStore for testing.
type MockSimulationStore struct {
	Runs map[uuid.UUID]*domain.SimulationRun

	// CreateError forces Create to fail when set
	CreateError error
}

// NewMockSimulationStore creates a new mock store with initialized
// defaults.
func NewMockSimulationStore() *MockSimulationStore {
	return &MockSimulationStore{Runs: make(map[uuid.UUID]*domain.SimulationRun)}
}

// Create implements the SimulationStore interface.
func (m *MockSimulationStore) Create(ctx context.Context, run *domain.SimulationRun) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Runs[run.ID] = run
	return nil
}

// GetByID implements the SimulationStore interface.
func (m *MockSimulationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.SimulationRun, error) {
	run, ok := m.Runs[id]
	if !ok {
		return nil, store.ErrSimulationNotFound
	}
	return run, nil
}

// ListBySystem implements the SimulationStore interface.
func (m *MockSimulationStore) ListBySystem(
	ctx context.Context,
	systemID uuid.UUID,
) ([]*domain.SimulationRun, error) {
	var runs []*domain.SimulationRun
	for _, run := range m.Runs {
		if run.SystemID == systemID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// Update implements the SimulationStore interface.
func (m *MockSimulationStore) Update(ctx context.Context, run *domain.SimulationRun) error {
	if _, ok := m.Runs[run.ID]; !ok {
		return store.ErrSimulationNotFound
	}
	m.Runs[run.ID] = run
	return nil
}

// WithTx implements the SimulationStore interface.
func (m *MockSimulationStore) WithTx(tx *sql.Tx) store.SimulationStore {
	return m
}
