// Package pvmodule models the electrical output of PV modules and
// inverters.
//
// It implements the Sandia PV Array Performance Model (SAPM,
// SAND2004-3535), the De Soto single-diode parameter translation with the
// Lambert-W explicit IV solutions of Jain & Kapoor (2004), the Sandia
// grid-connected inverter model (SAND2007-5036), the simpler PVWatts DC
// and AC models, incidence angle modifiers, and cell temperature
// estimation. Functions operate on scalars; callers iterating over time
// series apply them per sample.
package pvmodule

import (
	"fmt"
	"math"
)

// IVCurvePoints are the five characteristic points of a module IV curve
// as defined by SAND2004-3535.
type IVCurvePoints struct {
	ISC float64 `json:"i_sc"` // short-circuit current, A
	VOC float64 `json:"v_oc"` // open-circuit voltage, V
	IMP float64 `json:"i_mp"` // current at maximum power, A
	VMP float64 `json:"v_mp"` // voltage at maximum power, V
	PMP float64 `json:"p_mp"` // maximum power, W
	IX  float64 `json:"i_x"`  // current at V = 0.5 Voc
	IXX float64 `json:"i_xx"` // current at V = 0.5 (Voc + Vmp)
}

// ScaleVoltageCurrentPower scales a module-level IV result to the array
// level: voltages by the number of series-connected modules per string,
// currents by the number of parallel strings, power by both.
func ScaleVoltageCurrentPower(points IVCurvePoints, modulesPerString, stringsPerInverter int) IVCurvePoints {
	v := float64(modulesPerString)
	i := float64(stringsPerInverter)
	return IVCurvePoints{
		ISC: points.ISC * i,
		VOC: points.VOC * v,
		IMP: points.IMP * i,
		VMP: points.VMP * v,
		PMP: points.PMP * v * i,
		IX:  points.IX * i,
		IXX: points.IXX * i,
	}
}

// CellTemp holds the cell and back-of-module temperatures estimated by
// SAPMCellTemp, degrees C.
type CellTemp struct {
	Cell   float64 `json:"temp_cell"`
	Module float64 `json:"temp_module"`
}

// rackingCoefficients is the SAPM empirical {a, b, deltaT} table keyed by
// racking model name (SAND2004-3535 table 11).
var rackingCoefficients = map[string][3]float64{
	"open_rack_cell_glassback":         {-3.47, -0.0594, 3},
	"roof_mount_cell_glassback":        {-2.98, -0.0471, 1},
	"open_rack_cell_polymerback":       {-3.56, -0.0750, 3},
	"insulated_back_polymerback":       {-2.81, -0.0455, 0},
	"open_rack_polymer_thinfilm_steel": {-3.58, -0.113, 3},
	"22x_concentrator_tracker":         {-3.23, -0.130, 13},
}

// DefaultRackingModel is assumed when a system does not name one.
const DefaultRackingModel = "open_rack_cell_glassback"

// SAPMCellTemp estimates module and cell temperature from incident
// irradiance (W/m^2), wind speed (m/s at 10 m) and ambient temperature
// (degrees C) using the SAPM thermal model with the named racking
// configuration. An unknown racking model is an error.
func SAPMCellTemp(poaGlobal, windSpeed, tempAir float64, rackingModel string) (CellTemp, error) {
	if rackingModel == "" {
		rackingModel = DefaultRackingModel
	}
	coeffs, ok := rackingCoefficients[rackingModel]
	if !ok {
		return CellTemp{}, fmt.Errorf("unknown racking model %q", rackingModel)
	}
	a, b, deltaT := coeffs[0], coeffs[1], coeffs[2]

	const e0 = 1000.0 // reference irradiance

	tempModule := poaGlobal*math.Exp(a+b*windSpeed) + tempAir
	tempCell := tempModule + poaGlobal/e0*deltaT

	return CellTemp{Cell: tempCell, Module: tempModule}, nil
}
