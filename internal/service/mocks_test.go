package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/events"
	"github.com/pvgrid/helioserve/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStore is an in-memory store.UserStore
type mockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockSiteStore is an in-memory store.SiteStore
type mockSiteStore struct {
	mu    sync.Mutex
	sites map[uuid.UUID]*domain.Site
}

func newMockSiteStore() *mockSiteStore {
	return &mockSiteStore{sites: make(map[uuid.UUID]*domain.Site)}
}

func (m *mockSiteStore) Create(ctx context.Context, site *domain.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sites {
		if s.UserID == site.UserID && s.Name == site.Name {
			return store.ErrSiteNameExists
		}
	}
	clone := *site
	m.sites[site.ID] = &clone
	return nil
}

func (m *mockSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sites[id]
	if !ok {
		return nil, store.ErrSiteNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *mockSiteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Site
	for _, s := range m.sites {
		if s.UserID == userID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockSiteStore) Update(ctx context.Context, site *domain.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sites[site.ID]; !ok {
		return store.ErrSiteNotFound
	}
	clone := *site
	m.sites[site.ID] = &clone
	return nil
}

func (m *mockSiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sites[id]; !ok {
		return store.ErrSiteNotFound
	}
	delete(m.sites, id)
	return nil
}

func (m *mockSiteStore) WithTx(tx *sql.Tx) store.SiteStore { return m }

// mockSystemStore is an in-memory store.SystemStore
type mockSystemStore struct {
	mu      sync.Mutex
	systems map[uuid.UUID]*domain.System
}

func newMockSystemStore() *mockSystemStore {
	return &mockSystemStore{systems: make(map[uuid.UUID]*domain.System)}
}

func (m *mockSystemStore) Create(ctx context.Context, system *domain.System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.systems {
		if s.SiteID == system.SiteID && s.Name == system.Name {
			return store.ErrSystemNameExists
		}
	}
	clone := *system
	m.systems[system.ID] = &clone
	return nil
}

func (m *mockSystemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.System, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.systems[id]
	if !ok {
		return nil, store.ErrSystemNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *mockSystemStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.System, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.System
	for _, s := range m.systems {
		if s.SiteID == siteID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockSystemStore) Update(ctx context.Context, system *domain.System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.systems[system.ID]; !ok {
		return store.ErrSystemNotFound
	}
	clone := *system
	m.systems[system.ID] = &clone
	return nil
}

func (m *mockSystemStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.systems[id]; !ok {
		return store.ErrSystemNotFound
	}
	delete(m.systems, id)
	return nil
}

func (m *mockSystemStore) WithTx(tx *sql.Tx) store.SystemStore { return m }

// mockSimulationStore is an in-memory store.SimulationStore
type mockSimulationStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*domain.SimulationRun
}

func newMockSimulationStore() *mockSimulationStore {
	return &mockSimulationStore{runs: make(map[uuid.UUID]*domain.SimulationRun)}
}

func (m *mockSimulationStore) Create(ctx context.Context, run *domain.SimulationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *run
	m.runs[run.ID] = &clone
	return nil
}

func (m *mockSimulationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, store.ErrSimulationNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *mockSimulationStore) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.SimulationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.SimulationRun
	for _, r := range m.runs {
		if r.SystemID == systemID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockSimulationStore) Update(ctx context.Context, run *domain.SimulationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return store.ErrSimulationNotFound
	}
	clone := *run
	m.runs[run.ID] = &clone
	return nil
}

func (m *mockSimulationStore) WithTx(tx *sql.Tx) store.SimulationStore { return m }

// mockEmitter records emitted events
type mockEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// fixtures

func ptrFloat(v float64) *float64 { return &v }

func createTestSite(t *testing.T, sites *mockSiteStore, userID uuid.UUID) *domain.Site {
	t.Helper()
	site, err := domain.NewSite(userID, "boulder", 40.0, -105.0, 1650)
	require.NoError(t, err)
	require.NoError(t, sites.Create(context.Background(), site))
	return site
}

func createTestSystem(
	t *testing.T,
	systems *mockSystemStore,
	siteID, userID uuid.UUID,
) *domain.System {
	t.Helper()
	system, err := domain.NewSystem(siteID, userID, "roof array")
	require.NoError(t, err)
	system.SurfaceTilt = 30
	system.SurfaceAzimuth = 180
	system.ModuleParameters = map[string]float64{"pdc0": 5000, "gamma_pdc": -0.004}
	require.NoError(t, systems.Create(context.Background(), system))
	return system
}

func noonWeatherJSON(t *testing.T) []byte {
	t.Helper()
	noon := time.Date(2023, 6, 21, 19, 0, 0, 0, time.UTC)
	return []byte(`[{"time":"` + noon.Format(time.RFC3339) + `","ghi":900,"dni":850,"dhi":120}]`)
}
