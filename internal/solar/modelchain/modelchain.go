// Package modelchain wires the solar position, irradiance transposition,
// thermal and electrical models into a single simulation pipeline.
//
// The pipeline is expressed as a small DAG of named steps so the
// execution order follows the data dependencies rather than a hard-coded
// call sequence. Given a system description and a weather time series,
// Run produces the plane-of-array, cell temperature, DC and AC series.
package modelchain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pvgrid/helioserve/internal/solar/atmosphere"
	"github.com/pvgrid/helioserve/internal/solar/irradiance"
	"github.com/pvgrid/helioserve/internal/solar/pvmodule"
	"github.com/pvgrid/helioserve/internal/solar/solarposition"
	"github.com/pvgrid/helioserve/internal/solar/tracking"
)

// Weather is one sample of the driving weather series. TempAir and
// WindSpeed are optional; absent values default to 25 C and 0 m/s.
type Weather struct {
	Time      time.Time `json:"time"`
	GHI       float64   `json:"ghi"`
	DNI       float64   `json:"dni"`
	DHI       float64   `json:"dhi"`
	TempAir   *float64  `json:"temp_air,omitempty"`
	WindSpeed *float64  `json:"wind_speed,omitempty"`
}

// SystemConfig describes the PV system being simulated. DCModel and
// ACModel may be left empty to be inferred from the parameter sets.
// Altitude and Pressure are each optional; a missing one is derived from
// the other through the standard atmosphere, and with both absent the
// site is taken to be at sea level. A nil Albedo resolves through the
// SurfaceType lookup.
type SystemConfig struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Pressure  *float64 `json:"pressure,omitempty"`

	// Fixed mount orientation, ignored when Tracking is set.
	SurfaceTilt    float64 `json:"surface_tilt"`
	SurfaceAzimuth float64 `json:"surface_azimuth"`

	Tracking *tracking.SingleAxisConfig `json:"tracking,omitempty"`

	ModuleParameters   map[string]float64 `json:"module_parameters"`
	InverterParameters map[string]float64 `json:"inverter_parameters"`

	ModulesPerString   int `json:"modules_per_string"`
	StringsPerInverter int `json:"strings_per_inverter"`

	RackingModel       string   `json:"racking_model,omitempty"`
	TranspositionModel string   `json:"transposition_model,omitempty"`
	AirmassModel       string   `json:"airmass_model,omitempty"`
	SurfaceType        string   `json:"surface_type,omitempty"`
	Albedo             *float64 `json:"albedo,omitempty"`

	DCModel string `json:"dc_model,omitempty"`
	ACModel string `json:"ac_model,omitempty"`
}

// Result holds the per-sample outputs of a pipeline run. All slices have
// the length of the input weather series.
type Result struct {
	Times []time.Time `json:"times"`

	SolarPosition   []solarposition.SolarPosition `json:"solar_position"`
	AirmassRelative []float64                     `json:"airmass_relative"`
	AirmassAbsolute []float64                     `json:"airmass_absolute"`
	DNIExtra        []float64                     `json:"dni_extra"`
	AOI             []float64                     `json:"aoi"`

	Tracker []tracking.TrackerOrientation `json:"tracker,omitempty"`

	TotalIrradiance     []irradiance.POAIrradiance `json:"total_irradiance"`
	CellTemperature     []float64                  `json:"cell_temperature"`
	EffectiveIrradiance []float64                  `json:"effective_irradiance"`

	DC []pvmodule.IVCurvePoints `json:"dc"`
	AC []float64                `json:"ac"`

	// Models actually used, after inference.
	DCModel string `json:"dc_model"`
	ACModel string `json:"ac_model"`
}

// runState is the shared scratch space the pipeline steps read and write.
type runState struct {
	ctx     context.Context
	cfg     chainConfig
	weather []Weather
	out     *Result

	surfaceTilt    []float64
	surfaceAzimuth []float64
	pressure       float64
}

// chainConfig is a SystemConfig with defaults applied and models
// resolved.
type chainConfig struct {
	SystemConfig
	dcModel string
	acModel string
}

// Validate checks the ranges a simulation cannot proceed without.
func (c SystemConfig) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	if c.SurfaceTilt < 0 || c.SurfaceTilt > 180 {
		return fmt.Errorf("surface tilt %v out of range [0, 180]", c.SurfaceTilt)
	}
	if c.ModulesPerString < 0 || c.StringsPerInverter < 0 {
		return fmt.Errorf("string sizing must be positive")
	}
	if len(c.ModuleParameters) == 0 {
		return fmt.Errorf("module parameters are required")
	}
	return nil
}

// resolve applies defaults and infers unset models.
func resolve(cfg SystemConfig) (chainConfig, error) {
	if err := cfg.Validate(); err != nil {
		return chainConfig{}, err
	}

	if cfg.ModulesPerString == 0 {
		cfg.ModulesPerString = 1
	}
	if cfg.StringsPerInverter == 0 {
		cfg.StringsPerInverter = 1
	}
	if cfg.TranspositionModel == "" {
		cfg.TranspositionModel = irradiance.ModelHayDavies
	}
	if cfg.AirmassModel == "" {
		cfg.AirmassModel = atmosphere.ModelKastenYoung1989
	}
	if cfg.Albedo == nil {
		albedo := irradiance.AlbedoForSurface(cfg.SurfaceType)
		cfg.Albedo = &albedo
	}
	if cfg.RackingModel == "" {
		cfg.RackingModel = pvmodule.DefaultRackingModel
	}

	out := chainConfig{SystemConfig: cfg}

	var err error
	out.dcModel = cfg.DCModel
	if out.dcModel == "" {
		if out.dcModel, err = InferDCModel(cfg.ModuleParameters); err != nil {
			return chainConfig{}, err
		}
	}
	switch out.dcModel {
	case DCModelSAPM, DCModelSingleDiode, DCModelPVWatts:
	default:
		return chainConfig{}, fmt.Errorf("unknown DC model %q", out.dcModel)
	}

	out.acModel = cfg.ACModel
	if out.acModel == "" {
		if out.acModel, err = InferACModel(cfg.InverterParameters, cfg.ModuleParameters); err != nil {
			return chainConfig{}, err
		}
	}
	switch out.acModel {
	case ACModelSNLInverter, ACModelPVWatts:
	default:
		return chainConfig{}, fmt.Errorf("unknown AC model %q", out.acModel)
	}

	return out, nil
}

// Run executes the full simulation pipeline for the given system and
// weather series.
func Run(ctx context.Context, cfg SystemConfig, weather []Weather) (*Result, error) {
	if len(weather) == 0 {
		return nil, fmt.Errorf("weather series is empty")
	}

	resolved, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	n := len(weather)
	state := &runState{
		ctx:     ctx,
		cfg:     resolved,
		weather: weather,
		out: &Result{
			Times:               make([]time.Time, n),
			SolarPosition:       make([]solarposition.SolarPosition, n),
			AirmassRelative:     make([]float64, n),
			AirmassAbsolute:     make([]float64, n),
			DNIExtra:            make([]float64, n),
			AOI:                 make([]float64, n),
			TotalIrradiance:     make([]irradiance.POAIrradiance, n),
			CellTemperature:     make([]float64, n),
			EffectiveIrradiance: make([]float64, n),
			DC:                  make([]pvmodule.IVCurvePoints, n),
			AC:                  make([]float64, n),
			DCModel:             resolved.dcModel,
			ACModel:             resolved.acModel,
		},
		surfaceTilt:    make([]float64, n),
		surfaceAzimuth: make([]float64, n),
	}
	for i, w := range weather {
		state.out.Times[i] = w.Time
	}
	_, state.pressure = atmosphere.InferPressureAltitude(resolved.Altitude, resolved.Pressure)

	graph, err := newStepGraph(pipelineSteps(resolved))
	if err != nil {
		return nil, err
	}
	if err := graph.execute(state); err != nil {
		return nil, err
	}
	return state.out, nil
}

// PipelineOrder reports the step execution order for the given system
// without running it. Useful for diagnostics and plan previews.
func PipelineOrder(cfg SystemConfig) ([]string, error) {
	resolved, err := resolve(cfg)
	if err != nil {
		return nil, err
	}
	graph, err := newStepGraph(pipelineSteps(resolved))
	if err != nil {
		return nil, err
	}
	return graph.Order(), nil
}

func pipelineSteps(cfg chainConfig) []*step {
	steps := []*step{
		{name: "solar_position", run: stepSolarPosition},
		{name: "dni_extra", run: stepDNIExtra},
		{name: "airmass_relative", deps: []string{"solar_position"}, run: stepAirmassRelative},
		{name: "airmass_absolute", deps: []string{"airmass_relative"}, run: stepAirmassAbsolute},
		{name: "orientation", deps: []string{"solar_position"}, run: stepOrientation},
		{name: "poa_irradiance", deps: []string{"orientation", "dni_extra"}, run: stepPOAIrradiance},
		{name: "cell_temperature", deps: []string{"poa_irradiance"}, run: stepCellTemperature},
		{name: "effective_irradiance", deps: []string{"poa_irradiance", "airmass_absolute", "orientation"}, run: stepEffectiveIrradiance},
		{name: "dc_power", deps: []string{"effective_irradiance", "cell_temperature"}, run: stepDCPower},
		{name: "ac_power", deps: []string{"dc_power"}, run: stepACPower},
	}
	return steps
}

func stepSolarPosition(s *runState) error {
	for i, w := range s.weather {
		s.out.SolarPosition[i] = solarposition.Position(w.Time, s.cfg.Latitude, s.cfg.Longitude)
	}
	return nil
}

func stepDNIExtra(s *runState) error {
	for i, w := range s.weather {
		s.out.DNIExtra[i] = irradiance.ExtraterrestrialRadiation(w.Time)
	}
	return nil
}

func stepAirmassRelative(s *runState) error {
	for i := range s.weather {
		am, err := atmosphere.RelativeAirmass(s.out.SolarPosition[i].ApparentZenith, s.cfg.AirmassModel)
		if err != nil {
			return err
		}
		s.out.AirmassRelative[i] = am
	}
	return nil
}

func stepAirmassAbsolute(s *runState) error {
	for i := range s.weather {
		s.out.AirmassAbsolute[i] = atmosphere.AbsoluteAirmass(s.out.AirmassRelative[i], s.pressure)
	}
	return nil
}

// stepOrientation resolves the module orientation and angle of incidence
// per sample, from the tracker when one is configured and from the fixed
// mount otherwise.
func stepOrientation(s *runState) error {
	if s.cfg.Tracking == nil {
		for i := range s.weather {
			pos := s.out.SolarPosition[i]
			s.surfaceTilt[i] = s.cfg.SurfaceTilt
			s.surfaceAzimuth[i] = s.cfg.SurfaceAzimuth
			s.out.AOI[i] = irradiance.AOI(s.cfg.SurfaceTilt, s.cfg.SurfaceAzimuth, pos.ApparentZenith, pos.Azimuth)
		}
		return nil
	}

	s.out.Tracker = make([]tracking.TrackerOrientation, len(s.weather))
	for i := range s.weather {
		orient := tracking.SingleAxis(s.out.SolarPosition[i], *s.cfg.Tracking)
		s.out.Tracker[i] = orient
		s.surfaceTilt[i] = orient.SurfaceTilt
		s.surfaceAzimuth[i] = orient.SurfaceAzimuth
		s.out.AOI[i] = orient.AOI
	}
	return nil
}

func stepPOAIrradiance(s *runState) error {
	for i, w := range s.weather {
		pos := s.out.SolarPosition[i]
		tilt, azimuth := s.surfaceTilt[i], s.surfaceAzimuth[i]

		// The tracker parks at night and reports NaN orientation; there
		// is no irradiance to transpose then.
		if math.IsNaN(tilt) || pos.ApparentZenith >= 90 {
			s.out.TotalIrradiance[i] = irradiance.POAIrradiance{}
			continue
		}

		poa, err := irradiance.TotalIrradiance(
			s.cfg.TranspositionModel, tilt, azimuth,
			pos.ApparentZenith, pos.Azimuth,
			w.DNI, w.GHI, w.DHI, s.out.DNIExtra[i], *s.cfg.Albedo,
		)
		if err != nil {
			return err
		}
		s.out.TotalIrradiance[i] = poa
	}
	return nil
}

func stepCellTemperature(s *runState) error {
	for i, w := range s.weather {
		tempAir, windSpeed := weatherDefaults(w)
		ct, err := pvmodule.SAPMCellTemp(s.out.TotalIrradiance[i].Global, windSpeed, tempAir, s.cfg.RackingModel)
		if err != nil {
			return err
		}
		s.out.CellTemperature[i] = ct.Cell
	}
	return nil
}

// stepEffectiveIrradiance computes the irradiance reaching the cells. For
// SAPM this is the Sandia effective irradiance in suns; for the other DC
// models it is beam irradiance weighted by the physical incidence angle
// modifier plus sky and ground diffuse, in W/m^2.
func stepEffectiveIrradiance(s *runState) error {
	switch s.cfg.dcModel {
	case DCModelSAPM:
		params, err := pvmodule.SAPMParamsFromMap(s.cfg.ModuleParameters)
		if err != nil {
			return err
		}
		for i := range s.weather {
			poa := s.out.TotalIrradiance[i]
			s.out.EffectiveIrradiance[i] = pvmodule.SAPMEffectiveIrradiance(
				poa.Direct, poa.Diffuse, s.out.AirmassAbsolute[i], s.out.AOI[i], params)
		}
	default:
		const (
			glazingIndex      = 1.526
			glazingExtinction = 4.0
			glazingThickness  = 0.002
		)
		for i := range s.weather {
			poa := s.out.TotalIrradiance[i]
			if poa.Global <= 0 {
				s.out.EffectiveIrradiance[i] = 0
				continue
			}
			iam := pvmodule.IAMPhysical(s.out.AOI[i], glazingIndex, glazingExtinction, glazingThickness)
			if math.IsNaN(iam) {
				iam = 0
			}
			s.out.EffectiveIrradiance[i] = poa.Direct*iam + poa.Diffuse
		}
	}
	return nil
}

func stepDCPower(s *runState) error {
	switch s.cfg.dcModel {
	case DCModelSAPM:
		params, err := pvmodule.SAPMParamsFromMap(s.cfg.ModuleParameters)
		if err != nil {
			return err
		}
		for i := range s.weather {
			out := pvmodule.SAPM(s.out.EffectiveIrradiance[i], s.out.CellTemperature[i], params)
			s.out.DC[i] = pvmodule.ScaleVoltageCurrentPower(out.IVCurvePoints,
				s.cfg.ModulesPerString, s.cfg.StringsPerInverter)
		}

	case DCModelSingleDiode:
		params, err := pvmodule.DeSotoParamsFromMap(s.cfg.ModuleParameters)
		if err != nil {
			return err
		}
		for i := range s.weather {
			diode := pvmodule.CalcParamsDeSoto(s.out.EffectiveIrradiance[i], s.out.CellTemperature[i], 1, params)
			out := pvmodule.SingleDiode(diode)
			s.out.DC[i] = pvmodule.ScaleVoltageCurrentPower(out,
				s.cfg.ModulesPerString, s.cfg.StringsPerInverter)
		}

	case DCModelPVWatts:
		params, err := pvmodule.PVWattsDCParamsFromMap(s.cfg.ModuleParameters)
		if err != nil {
			return err
		}
		// PVWatts nameplate is taken as the whole array, so no string
		// scaling applies.
		for i := range s.weather {
			pdc := pvmodule.PVWattsDC(s.out.EffectiveIrradiance[i], s.out.CellTemperature[i], params)
			s.out.DC[i] = pvmodule.IVCurvePoints{PMP: pdc}
		}
	}
	return nil
}

func stepACPower(s *runState) error {
	switch s.cfg.acModel {
	case ACModelSNLInverter:
		params, err := pvmodule.SNLInverterParamsFromMap(s.cfg.InverterParameters)
		if err != nil {
			return err
		}
		for i := range s.weather {
			s.out.AC[i] = pvmodule.SNLInverter(s.out.DC[i].VMP, s.out.DC[i].PMP, params)
		}

	case ACModelPVWatts:
		pdc0, err := pvwattsInverterNameplate(s.cfg)
		if err != nil {
			return err
		}
		for i := range s.weather {
			s.out.AC[i] = pvmodule.PVWattsAC(s.out.DC[i].PMP, pdc0)
		}
	}
	return nil
}

// pvwattsInverterNameplate resolves the inverter DC nameplate for the
// PVWatts AC model: the inverter's own pdc0 when given, otherwise the
// module nameplate divided by the nominal inverter efficiency.
func pvwattsInverterNameplate(cfg chainConfig) (float64, error) {
	if v, ok := cfg.InverterParameters["pdc0"]; ok {
		return v, nil
	}
	if v, ok := cfg.ModuleParameters["pdc0"]; ok {
		return v / 0.96, nil
	}
	return 0, fmt.Errorf("pvwatts AC model requires a pdc0 parameter")
}

func weatherDefaults(w Weather) (tempAir, windSpeed float64) {
	tempAir = 25
	if w.TempAir != nil {
		tempAir = *w.TempAir
	}
	if w.WindSpeed != nil {
		windSpeed = *w.WindSpeed
	}
	return tempAir, windSpeed
}
