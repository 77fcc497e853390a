package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/events"
	"github.com/pvgrid/helioserve/internal/mocks"
	"github.com/pvgrid/helioserve/internal/paramdb"
	"github.com/pvgrid/helioserve/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv bundles the in-memory stores and services handler tests run
// against.
type testEnv struct {
	userStore       *mocks.MockUserStore
	siteStore       *mocks.MockSiteStore
	systemStore     *mocks.MockSystemStore
	simulationStore *mocks.MockSimulationStore
	emitter         *events.InMemoryEventEmitter

	userService       service.UserService
	siteService       *service.SiteService
	systemService     *service.SystemService
	simulationService *service.SimulationService

	userID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := testLogger()
	env := &testEnv{
		userStore:       mocks.NewMockUserStore(),
		siteStore:       mocks.NewMockSiteStore(),
		systemStore:     mocks.NewMockSystemStore(),
		simulationStore: mocks.NewMockSimulationStore(),
		emitter:         events.NewInMemoryEventEmitter(log),
	}

	catalog, err := paramdb.LoadCatalog(
		"../paramdb/testdata/sam_modules.csv",
		"../paramdb/testdata/sam_inverters.csv",
	)
	require.NoError(t, err)

	env.userService = service.NewUserService(env.userStore, nil, bcrypt.MinCost, log)
	env.siteService = service.NewSiteService(env.siteStore, nil, log)
	env.systemService = service.NewSystemService(env.systemStore, env.siteStore, catalog, nil, log)
	env.simulationService = service.NewSimulationService(
		env.simulationStore, env.systemStore, env.siteStore, catalog, env.emitter, nil, log)

	env.userID = uuid.New()
	return env
}

// createSite seeds a site owned by the env's test user.
func (env *testEnv) createSite(t *testing.T) *domain.Site {
	t.Helper()
	site, err := env.siteService.CreateSite(
		context.Background(), env.userID, "boulder", 40.0, -105.0, 1650, "America/Denver")
	require.NoError(t, err)
	return site
}

// createSystem seeds a PVWatts system at the given site.
func (env *testEnv) createSystem(t *testing.T, siteID uuid.UUID) *domain.System {
	t.Helper()
	system, err := env.systemService.CreateSystem(context.Background(), env.userID, &domain.System{
		SiteID:         siteID,
		Name:           "south array",
		SurfaceTilt:    30,
		SurfaceAzimuth: 180,
		ModuleParameters: map[string]float64{"pdc0": 5000, "gamma_pdc": -0.004},
	})
	require.NoError(t, err)
	return system
}

// jsonRequest builds a request with a JSON body and chi route context
// so URL parameters resolve without a full router.
func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches an authenticated user ID to the request context.
func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withPathParam attaches a chi route parameter to the request context.
func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
