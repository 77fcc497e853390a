package pvmodule

import "math"

// SNLInverterParams are the Sandia grid-connected inverter model
// coefficients, named as in the CEC inverter database.
type SNLInverterParams struct {
	Paco float64 // rated AC power, W
	Pdco float64 // DC power at which rated AC power is reached, W
	Vdco float64 // DC voltage at which the ratings apply, V
	Pso  float64 // DC power required to start inversion, W
	C0   float64 // curvature of AC vs DC power, 1/W
	C1   float64 // variation of Pdco with DC voltage, 1/V
	C2   float64 // variation of Pso with DC voltage, 1/V
	C3   float64 // variation of C0 with DC voltage, 1/V
	Pnt  float64 // night tare power, W
}

// SNLInverter converts DC voltage (V) and DC power (W) to AC power using
// the Sandia inverter model (SAND2007-5036). Output is clipped at the
// rated AC power, and below the start-up power the inverter draws its
// night tare.
func SNLInverter(vDC, pDC float64, params SNLInverterParams) float64 {
	dv := vDC - params.Vdco

	a := params.Pdco * (1 + params.C1*dv)
	b := params.Pso * (1 + params.C2*dv)
	c := params.C0 * (1 + params.C3*dv)

	acPower := (params.Paco/(a-b)-c*(a-b))*(pDC-b) + c*(pDC-b)*(pDC-b)

	if acPower > params.Paco {
		acPower = params.Paco
	}
	if pDC < params.Pso {
		acPower = -math.Abs(params.Pnt)
	}
	return acPower
}

// PVWattsDCParams are the two module parameters of the PVWatts DC model.
type PVWattsDCParams struct {
	PDC0     float64 `json:"pdc0"`      // nameplate DC power at reference, W
	GammaPDC float64 `json:"gamma_pdc"` // power temperature coefficient, 1/C
}

// PVWattsDC computes DC power from effective irradiance (W/m^2) and cell
// temperature (C) with the PVWatts v5 module model.
func PVWattsDC(effectiveIrradiance, tempCell float64, params PVWattsDCParams) float64 {
	if effectiveIrradiance <= 0 || math.IsNaN(effectiveIrradiance) {
		return 0
	}
	return params.PDC0 * effectiveIrradiance / 1000 * (1 + params.GammaPDC*(tempCell-25))
}

// PVWattsAC converts DC power to AC power with the PVWatts v5 inverter
// model. pdc0 is the inverter DC nameplate; the nominal inverter
// efficiency is 0.96.
func PVWattsAC(pDC, pDC0 float64) float64 {
	const (
		etaNom = 0.96
		etaRef = 0.9637
	)

	if pDC <= 0 || math.IsNaN(pDC) {
		return 0
	}

	pAC0 := etaNom * pDC0
	zeta := pDC / pDC0
	eta := etaNom / etaRef * (-0.0162*zeta - 0.0059/zeta + 0.9858)

	pAC := eta * pDC
	if pAC > pAC0 {
		pAC = pAC0
	}
	if pAC < 0 {
		pAC = 0
	}
	return pAC
}
