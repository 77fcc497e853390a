package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/solar/modelchain"
	"github.com/pvgrid/helioserve/internal/task"
)

type simFixture struct {
	svc     *SimulationService
	sites   *mockSiteStore
	systems *mockSystemStore
	runs    *mockSimulationStore
	emitter *mockEmitter
	userID  uuid.UUID
	site    *domain.Site
	system  *domain.System
}

func newSimFixture(t *testing.T) *simFixture {
	t.Helper()
	sites := newMockSiteStore()
	systems := newMockSystemStore()
	runs := newMockSimulationStore()
	emitter := &mockEmitter{}
	userID := uuid.New()
	site := createTestSite(t, sites, userID)
	system := createTestSystem(t, systems, site.ID, userID)

	svc := NewSimulationService(runs, systems, sites, testCatalog(t), emitter, nil, testLogger())
	return &simFixture{
		svc:     svc,
		sites:   sites,
		systems: systems,
		runs:    runs,
		emitter: emitter,
		userID:  userID,
		site:    site,
		system:  system,
	}
}

func TestSimulationService_CreateRun(t *testing.T) {
	ctx := context.Background()

	t.Run("queues run and emits event", func(t *testing.T) {
		f := newSimFixture(t)

		run, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, noonWeatherJSON(t))
		require.NoError(t, err)
		assert.Equal(t, domain.SimulationStatusPending, run.Status)

		stored, err := f.runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, f.system.ID, stored.SystemID)

		require.Len(t, f.emitter.events, 1)
		event := f.emitter.events[0]
		assert.Equal(t, task.TaskTypeSimulationRun, event.Type)

		var payload struct {
			RunID string `json:"run_id"`
		}
		require.NoError(t, event.UnmarshalPayload(&payload))
		assert.Equal(t, run.ID.String(), payload.RunID)
	})

	t.Run("system owned by someone else", func(t *testing.T) {
		f := newSimFixture(t)

		_, err := f.svc.CreateRun(ctx, uuid.New(), f.system.ID, noonWeatherJSON(t))
		assert.ErrorIs(t, err, ErrNotOwned)
		assert.Empty(t, f.emitter.events)
	})

	t.Run("malformed weather", func(t *testing.T) {
		f := newSimFixture(t)

		_, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, json.RawMessage(`{"not":"a series"}`))
		assert.Error(t, err)
		assert.Empty(t, f.emitter.events)
	})

	t.Run("empty weather", func(t *testing.T) {
		f := newSimFixture(t)

		_, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, json.RawMessage(`[]`))
		assert.Error(t, err)
	})
}

func TestSimulationService_GetAndListRuns(t *testing.T) {
	ctx := context.Background()
	f := newSimFixture(t)

	run, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, noonWeatherJSON(t))
	require.NoError(t, err)

	got, err := f.svc.GetRun(ctx, f.userID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = f.svc.GetRun(ctx, uuid.New(), run.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	listed, err := f.svc.ListRuns(ctx, f.userID, f.system.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = f.svc.ListRuns(ctx, uuid.New(), f.system.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestSimulationService_ExecuteRun(t *testing.T) {
	ctx := context.Background()

	t.Run("completes run with results", func(t *testing.T) {
		f := newSimFixture(t)

		run, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, noonWeatherJSON(t))
		require.NoError(t, err)

		require.NoError(t, f.svc.ExecuteRun(ctx, run.ID))

		done, err := f.runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SimulationStatusCompleted, done.Status)
		require.NotNil(t, done.StartedAt)
		require.NotNil(t, done.CompletedAt)

		var result modelchain.Result
		require.NoError(t, json.Unmarshal(done.Results, &result))
		require.Len(t, result.DC, 1)
		assert.Greater(t, result.DC[0].PMP, 1000.0)
		assert.Equal(t, modelchain.DCModelPVWatts, result.DCModel)
	})

	t.Run("resolves surface type into albedo", func(t *testing.T) {
		f := newSimFixture(t)
		f.system.SurfaceType = "snow"
		require.NoError(t, f.systems.Update(ctx, f.system))

		run, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, noonWeatherJSON(t))
		require.NoError(t, err)
		require.NoError(t, f.svc.ExecuteRun(ctx, run.ID))

		done, err := f.runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		var snowy modelchain.Result
		require.NoError(t, json.Unmarshal(done.Results, &snowy))
		assert.Greater(t, snowy.TotalIrradiance[0].GroundDiffuse, 0.0)

		// An explicit zero albedo is honored, not treated as unset.
		g := newSimFixture(t)
		g.system.Albedo = ptrFloat(0)
		require.NoError(t, g.systems.Update(ctx, g.system))

		run, err = g.svc.CreateRun(ctx, g.userID, g.system.ID, noonWeatherJSON(t))
		require.NoError(t, err)
		require.NoError(t, g.svc.ExecuteRun(ctx, run.ID))

		done, err = g.runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		var bare modelchain.Result
		require.NoError(t, json.Unmarshal(done.Results, &bare))
		assert.Zero(t, bare.TotalIrradiance[0].GroundDiffuse)
		assert.Less(t, bare.TotalIrradiance[0].Global, snowy.TotalIrradiance[0].Global)
	})

	t.Run("records failure on bad system", func(t *testing.T) {
		f := newSimFixture(t)

		run, err := f.svc.CreateRun(ctx, f.userID, f.system.ID, noonWeatherJSON(t))
		require.NoError(t, err)

		// Break the system after the run was queued
		broken, err := f.systems.GetByID(ctx, f.system.ID)
		require.NoError(t, err)
		broken.ModuleParameters = map[string]float64{"gamma_pdc": -0.004}
		broken.ModuleName = ""
		require.NoError(t, f.systems.Update(ctx, broken))

		err = f.svc.ExecuteRun(ctx, run.ID)
		assert.Error(t, err)

		failed, err := f.runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SimulationStatusFailed, failed.Status)
		assert.NotEmpty(t, failed.Error)
	})

	t.Run("unknown run", func(t *testing.T) {
		f := newSimFixture(t)
		assert.Error(t, f.svc.ExecuteRun(ctx, uuid.New()))
	})
}

func TestSimulationService_Preview(t *testing.T) {
	ctx := context.Background()
	f := newSimFixture(t)

	noon := time.Date(2023, 6, 21, 19, 0, 0, 0, time.UTC)
	weather := []modelchain.Weather{{Time: noon, GHI: 900, DNI: 850, DHI: 120}}

	t.Run("embedded parameters", func(t *testing.T) {
		result, err := f.svc.Preview(ctx, PreviewInput{
			Config: modelchain.SystemConfig{
				Latitude:         40,
				Longitude:        -105,
				Altitude:         ptrFloat(1650),
				SurfaceTilt:      30,
				SurfaceAzimuth:   180,
				ModuleParameters: map[string]float64{"pdc0": 5000, "gamma_pdc": -0.004},
			},
			Weather: weather,
		})
		require.NoError(t, err)
		require.Len(t, result.AC, 1)
		assert.Greater(t, result.AC[0], 0.0)
	})

	t.Run("catalog names", func(t *testing.T) {
		result, err := f.svc.Preview(ctx, PreviewInput{
			Config: modelchain.SystemConfig{
				Latitude:       40,
				Longitude:      -105,
				Altitude:       ptrFloat(1650),
				SurfaceTilt:    30,
				SurfaceAzimuth: 180,
			},
			ModuleName:   "Example Module Model",
			InverterName: "Example Inverter",
			Weather:      weather,
		})
		require.NoError(t, err)
		assert.Equal(t, modelchain.DCModelSAPM, result.DCModel)
	})

	t.Run("unknown module name", func(t *testing.T) {
		_, err := f.svc.Preview(ctx, PreviewInput{
			Config: modelchain.SystemConfig{
				Latitude: 40, Longitude: -105,
				SurfaceTilt: 30, SurfaceAzimuth: 180,
			},
			ModuleName: "No Such Panel",
			Weather:    weather,
		})
		assert.ErrorIs(t, err, ErrModuleNotFound)
	})
}
