package modelchain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/solar/atmosphere"
	"github.com/pvgrid/helioserve/internal/solar/tracking"
)

func ptr(v float64) *float64 { return &v }

// boulderNoon is close to local solar noon in midsummer at the test
// site (40N, 105W).
var (
	boulderNoon     = time.Date(2023, 6, 21, 19, 0, 0, 0, time.UTC)
	boulderMidnight = time.Date(2023, 6, 21, 7, 0, 0, 0, time.UTC)
)

func dayNightWeather() []Weather {
	return []Weather{
		{Time: boulderNoon, GHI: 800, DNI: 700, DHI: 100, TempAir: ptr(20), WindSpeed: ptr(3)},
		{Time: boulderMidnight, GHI: 0, DNI: 0, DHI: 0, TempAir: ptr(10), WindSpeed: ptr(1)},
	}
}

func pvwattsSystem() SystemConfig {
	return SystemConfig{
		Latitude:         40,
		Longitude:        -105,
		Altitude:         ptr(1650),
		SurfaceTilt:      30,
		SurfaceAzimuth:   180,
		ModuleParameters: map[string]float64{"pdc0": 5000, "gamma_pdc": -0.004},
	}
}

func singleDiodeSystem() SystemConfig {
	return SystemConfig{
		Latitude:       40,
		Longitude:      -105,
		SurfaceTilt:    30,
		SurfaceAzimuth: 180,
		ModuleParameters: map[string]float64{
			"a_ref": 2.6373, "I_L_ref": 5.114, "I_o_ref": 8.196e-10,
			"R_sh_ref": 381.68, "R_s": 1.065, "alpha_sc": 0.004539,
		},
		InverterParameters: map[string]float64{
			"Paco": 250, "Pdco": 260, "Vdco": 48, "Pso": 5,
			"C0": 0, "C1": 0, "C2": 0, "C3": 0, "Pnt": 1,
		},
	}
}

func TestStepGraphOrderRespectsDependencies(t *testing.T) {
	t.Parallel()

	g, err := newStepGraph([]*step{
		{name: "c", deps: []string{"b"}},
		{name: "a"},
		{name: "b", deps: []string{"a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, g.Order())
}

func TestStepGraphRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		steps []*step
		want  error
	}{
		{
			name:  "duplicate name",
			steps: []*step{{name: "a"}, {name: "a"}},
			want:  ErrInvalidGraph,
		},
		{
			name:  "unknown dependency",
			steps: []*step{{name: "a", deps: []string{"ghost"}}},
			want:  ErrInvalidGraph,
		},
		{
			name:  "self loop",
			steps: []*step{{name: "a", deps: []string{"a"}}},
			want:  ErrInvalidGraph,
		},
		{
			name: "cycle",
			steps: []*step{
				{name: "a", deps: []string{"b"}},
				{name: "b", deps: []string{"a"}},
			},
			want: ErrCycleFound,
		},
		{
			name:  "empty name",
			steps: []*step{{name: ""}},
			want:  ErrInvalidGraph,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := newStepGraph(tc.steps)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInferDCModel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		params  map[string]float64
		want    string
		wantErr bool
	}{
		{
			name:   "sandia coefficients",
			params: map[string]float64{"A0": 1, "A1": 0, "C7": 0},
			want:   DCModelSAPM,
		},
		{
			name: "single diode coefficients",
			params: map[string]float64{
				"a_ref": 2.6, "I_L_ref": 5, "I_o_ref": 1e-9,
				"R_sh_ref": 400, "R_s": 1,
			},
			want: DCModelSingleDiode,
		},
		{
			name:   "pvwatts pair",
			params: map[string]float64{"pdc0": 5000, "gamma_pdc": -0.004},
			want:   DCModelPVWatts,
		},
		{
			name:    "unrecognized",
			params:  map[string]float64{"mystery": 1},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := InferDCModel(tc.params)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInferACModel(t *testing.T) {
	t.Parallel()

	got, err := InferACModel(map[string]float64{"C0": 0, "C1": 0, "C2": 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, ACModelSNLInverter, got)

	got, err = InferACModel(nil, map[string]float64{"pdc0": 5000})
	require.NoError(t, err)
	assert.Equal(t, ACModelPVWatts, got)

	_, err = InferACModel(nil, map[string]float64{"gamma_pdc": -0.004})
	require.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := resolve(pvwattsSystem())
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.ModulesPerString)
	assert.Equal(t, 1, cfg.StringsPerInverter)
	assert.Equal(t, "haydavies", cfg.TranspositionModel)
	assert.Equal(t, DCModelPVWatts, cfg.dcModel)
	assert.Equal(t, ACModelPVWatts, cfg.acModel)
	assert.InDelta(t, 0.25, *cfg.Albedo, 1e-12)
}

func TestResolveAlbedo(t *testing.T) {
	t.Parallel()

	cfg := pvwattsSystem()
	cfg.SurfaceType = "snow"
	resolved, err := resolve(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, *resolved.Albedo, 1e-12)

	// Unknown surface types fall back to the default.
	cfg = pvwattsSystem()
	cfg.SurfaceType = "moon dust"
	resolved, err = resolve(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, *resolved.Albedo, 1e-12)

	// A numeric albedo wins over the surface type, including zero.
	cfg = pvwattsSystem()
	cfg.SurfaceType = "snow"
	cfg.Albedo = ptr(0)
	resolved, err = resolve(cfg)
	require.NoError(t, err)
	assert.Zero(t, *resolved.Albedo)
}

func TestRunAlbedoDrivesGroundDiffuse(t *testing.T) {
	t.Parallel()

	weather := dayNightWeather()

	cfg := pvwattsSystem()
	cfg.Albedo = ptr(0)
	dark, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	assert.Zero(t, dark.TotalIrradiance[0].GroundDiffuse)

	cfg = pvwattsSystem()
	cfg.SurfaceType = "snow"
	bright, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	assert.Greater(t, bright.TotalIrradiance[0].GroundDiffuse, 0.0)
	assert.Greater(t, bright.TotalIrradiance[0].Global, dark.TotalIrradiance[0].Global)
}

// TestRunPressureInference pins the station pressure rules: sea level
// when neither altitude nor pressure is given, the standard atmosphere
// when only altitude is known, and the measured pressure verbatim when
// one is supplied. The pressure in use is visible through the ratio of
// absolute to relative airmass.
func TestRunPressureInference(t *testing.T) {
	t.Parallel()

	weather := dayNightWeather()
	pressureRatio := func(r *Result) float64 {
		return r.AirmassAbsolute[0] / r.AirmassRelative[0]
	}

	cfg := pvwattsSystem()
	cfg.Altitude = nil
	seaLevel, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pressureRatio(seaLevel), 1e-9)

	cfg = pvwattsSystem()
	fromAltitude, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	want := atmosphere.AltitudeToPressure(1650) / atmosphere.StandardPressure
	assert.InDelta(t, want, pressureRatio(fromAltitude), 1e-9)
	assert.Less(t, fromAltitude.AirmassAbsolute[0], fromAltitude.AirmassRelative[0])

	cfg = pvwattsSystem()
	cfg.Altitude = nil
	cfg.Pressure = ptr(83000)
	measured, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	assert.InDelta(t, 83000/atmosphere.StandardPressure, pressureRatio(measured), 1e-9)

	// When both are supplied the measured pressure wins.
	cfg = pvwattsSystem()
	cfg.Pressure = ptr(83000)
	both, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)
	assert.InDelta(t, pressureRatio(measured), pressureRatio(both), 1e-12)
}

func TestResolveRejectsUnknownModels(t *testing.T) {
	t.Parallel()

	cfg := pvwattsSystem()
	cfg.DCModel = "psychic"
	_, err := resolve(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychic")

	cfg = pvwattsSystem()
	cfg.ACModel = "psychic"
	_, err = resolve(cfg)
	require.Error(t, err)
}

func TestSystemConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := pvwattsSystem()
	cfg.Latitude = 95
	assert.Error(t, cfg.Validate())

	cfg = pvwattsSystem()
	cfg.Longitude = -200
	assert.Error(t, cfg.Validate())

	cfg = pvwattsSystem()
	cfg.ModuleParameters = nil
	assert.Error(t, cfg.Validate())

	assert.NoError(t, pvwattsSystem().Validate())
}

func TestRunPVWatts(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), pvwattsSystem(), dayNightWeather())
	require.NoError(t, err)

	require.Len(t, res.AC, 2)
	require.Len(t, res.DC, 2)
	assert.Equal(t, DCModelPVWatts, res.DCModel)
	assert.Equal(t, ACModelPVWatts, res.ACModel)

	// Midsummer noon at a tilted south-facing array produces most of
	// nameplate; midnight produces nothing.
	assert.Greater(t, res.DC[0].PMP, 2000.0)
	assert.Less(t, res.DC[0].PMP, 5500.0)
	assert.Greater(t, res.AC[0], 0.0)
	assert.Less(t, res.AC[0], res.DC[0].PMP)

	assert.Equal(t, 0.0, res.DC[1].PMP)
	assert.Equal(t, 0.0, res.AC[1])

	// Supporting series are populated.
	assert.Less(t, res.SolarPosition[0].ApparentZenith, 30.0)
	assert.Greater(t, res.SolarPosition[1].ApparentZenith, 90.0)
	assert.Greater(t, res.TotalIrradiance[0].Global, 0.0)
	assert.Equal(t, 0.0, res.TotalIrradiance[1].Global)
	assert.Greater(t, res.CellTemperature[0], 20.0)
}

func TestRunSingleDiodeWithSandiaInverter(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), singleDiodeSystem(), dayNightWeather())
	require.NoError(t, err)

	assert.Equal(t, DCModelSingleDiode, res.DCModel)
	assert.Equal(t, ACModelSNLInverter, res.ACModel)

	// One CS5P-220M module in full sun yields on the order of its
	// nameplate.
	assert.Greater(t, res.DC[0].PMP, 100.0)
	assert.Less(t, res.DC[0].PMP, 250.0)
	assert.Greater(t, res.DC[0].VMP, 0.0)
	assert.Greater(t, res.AC[0], 0.0)

	// At night the inverter draws its tare power.
	assert.InDelta(t, -1.0, res.AC[1], 1e-9)
}

func TestRunScalesStrings(t *testing.T) {
	t.Parallel()

	single := singleDiodeSystem()

	array := singleDiodeSystem()
	array.ModulesPerString = 10
	array.StringsPerInverter = 2
	// Larger inverter so the array result is not clipped.
	array.InverterParameters = map[string]float64{
		"Paco": 6000, "Pdco": 6200, "Vdco": 480, "Pso": 20,
		"C0": 0, "C1": 0, "C2": 0, "C3": 0, "Pnt": 1,
	}

	resSingle, err := Run(context.Background(), single, dayNightWeather())
	require.NoError(t, err)
	resArray, err := Run(context.Background(), array, dayNightWeather())
	require.NoError(t, err)

	assert.InDelta(t, 20*resSingle.DC[0].PMP, resArray.DC[0].PMP, 1e-6)
	assert.InDelta(t, 10*resSingle.DC[0].VMP, resArray.DC[0].VMP, 1e-6)
	assert.InDelta(t, 2*resSingle.DC[0].ISC, resArray.DC[0].ISC, 1e-6)
}

func TestRunWithTracker(t *testing.T) {
	t.Parallel()

	cfg := pvwattsSystem()
	cfg.SurfaceTilt = 0
	cfg.SurfaceAzimuth = 0
	cfg.Tracking = &tracking.SingleAxisConfig{AxisTilt: 0, AxisAzimuth: 180}

	morning := time.Date(2023, 6, 21, 15, 0, 0, 0, time.UTC)
	weather := []Weather{
		{Time: morning, GHI: 500, DNI: 600, DHI: 80},
		{Time: boulderNoon, GHI: 800, DNI: 700, DHI: 100},
	}

	res, err := Run(context.Background(), cfg, weather)
	require.NoError(t, err)

	require.Len(t, res.Tracker, 2)
	// Mid-morning the tracker is rotated well toward the east; near
	// solar noon it is close to flat.
	assert.Greater(t, res.Tracker[0].SurfaceTilt, res.Tracker[1].SurfaceTilt)
	assert.Greater(t, res.AC[0], 0.0)
	assert.Greater(t, res.AC[1], 0.0)
}

func TestRunEmptyWeather(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), pvwattsSystem(), nil)
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, pvwattsSystem(), dayNightWeather())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineOrder(t *testing.T) {
	t.Parallel()

	order, err := PipelineOrder(pvwattsSystem())
	require.NoError(t, err)
	assert.Len(t, order, 10)

	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}

	before := func(a, b string) {
		assert.Less(t, index[a], index[b], "%s should run before %s", a, b)
	}
	before("solar_position", "airmass_relative")
	before("airmass_relative", "airmass_absolute")
	before("orientation", "poa_irradiance")
	before("poa_irradiance", "cell_temperature")
	before("effective_irradiance", "dc_power")
	before("dc_power", "ac_power")
}
