package pvmodule

import "math"

// boltzmannEV is the Boltzmann constant in eV/K.
const boltzmannEV = 8.617332478e-05

// DeSotoParams are the five reference-condition parameters of the De Soto
// single-diode model plus the temperature coefficients needed to translate
// them to operating conditions. Field names follow the CEC module database.
type DeSotoParams struct {
	ARef       float64 `json:"a_ref"`    // diode factor product n*Ns*Vth at reference, V
	ILRef      float64 `json:"I_L_ref"`  // photocurrent at reference, A
	I0Ref      float64 `json:"I_o_ref"`  // diode saturation current at reference, A
	RShRef     float64 `json:"R_sh_ref"` // shunt resistance at reference, ohm
	RS         float64 `json:"R_s"`      // series resistance, ohm
	AlphaSC    float64 `json:"alpha_sc"` // short-circuit current temperature coefficient, A/C
	EgRef      float64 `json:"EgRef"`    // band gap at reference, eV (1.121 for silicon)
	DEgDT      float64 `json:"dEgdT"`    // band gap temperature dependence, 1/K (-0.0002677 for silicon)
	TempRefC   float64 `json:"temp_ref"` // reference cell temperature, C (25 when zero)
	IrradRefWm float64 `json:"irrad_ref"`
}

// DiodeParams are single-diode model parameters at operating conditions,
// ready for SingleDiode.
type DiodeParams struct {
	Photocurrent      float64 // IL, A
	SaturationCurrent float64 // I0, A
	ResistanceSeries  float64 // Rs, ohm
	ResistanceShunt   float64 // Rsh, ohm
	NNsVth            float64 // n*Ns*Vth, V
}

// CalcParamsDeSoto translates reference single-diode parameters to the
// given effective irradiance (W/m^2) and cell temperature (C) following
// De Soto et al. (2006). airmassModifier is the spectral mismatch factor
// M; pass 1 to ignore spectral effects.
func CalcParamsDeSoto(effectiveIrradiance, tempCell, airmassModifier float64, params DeSotoParams) DiodeParams {
	tRef := params.TempRefC
	if tRef == 0 {
		tRef = 25
	}
	irradRef := params.IrradRefWm
	if irradRef == 0 {
		irradRef = 1000
	}

	tRefK := tRef + 273.15
	tCellK := tempCell + 273.15

	eg := params.EgRef * (1 + params.DEgDT*(tCellK-tRefK))

	nNsVth := params.ARef * tCellK / tRefK

	il := effectiveIrradiance / irradRef * airmassModifier *
		(params.ILRef + params.AlphaSC*(tCellK-tRefK))

	i0 := params.I0Ref * math.Pow(tCellK/tRefK, 3) *
		math.Exp(params.EgRef/(boltzmannEV*tRefK)-eg/(boltzmannEV*tCellK))

	rsh := math.Inf(1)
	if effectiveIrradiance > 0 {
		rsh = params.RShRef * irradRef / effectiveIrradiance
	}

	return DiodeParams{
		Photocurrent:      il,
		SaturationCurrent: i0,
		ResistanceSeries:  params.RS,
		ResistanceShunt:   rsh,
		NNsVth:            nNsVth,
	}
}
