package pvmodule

import "math"

const (
	elementaryCharge = 1.60218e-19 // C
	boltzmannJ       = 1.38066e-23 // J/K
)

// SAPMParams are the Sandia PV Array Performance Model coefficients for a
// module, named as in the Sandia module database.
type SAPMParams struct {
	Cells  float64 // cells in series, Ns
	ISCO   float64 // reference short-circuit current, A
	IMPO   float64 // reference max-power current, A
	VOCO   float64 // reference open-circuit voltage, V
	VMPO   float64 // reference max-power voltage, V
	AISC   float64 // Isc temperature coefficient, 1/C
	AIMP   float64 // Imp temperature coefficient, 1/C
	BVOCO  float64 // Voc temperature coefficient, V/C
	MBVOC  float64 // irradiance dependence of BVOCO
	BVMPO  float64 // Vmp temperature coefficient, V/C
	MBVMP  float64 // irradiance dependence of BVMPO
	N      float64 // empirical diode factor
	C0, C1 float64 // Imp coefficients
	C2, C3 float64 // Vmp coefficients
	C4, C5 float64 // Ix coefficients
	C6, C7 float64 // Ixx coefficients
	IXO    float64 // reference Ix, A
	IXXO   float64 // reference Ixx, A
	A0, A1 float64 // air mass polynomial, constant term first
	A2, A3 float64
	A4     float64
	B0, B1 float64 // incidence angle polynomial, constant term first
	B2, B3 float64
	B4, B5 float64
	FD     float64 // fraction of diffuse used by the module, typically 1
}

// SAPMResult is the SAPM output for one sample: the IV curve points plus
// the effective irradiance they were computed at.
type SAPMResult struct {
	IVCurvePoints
	EffectiveIrradiance float64 `json:"effective_irradiance"` // suns
}

// SAPMEffectiveIrradiance computes the SAPM effective irradiance in suns
// from plane-of-array beam and diffuse irradiance (W/m^2), absolute air
// mass and angle of incidence (degrees).
func SAPMEffectiveIrradiance(poaDirect, poaDiffuse, airmassAbsolute, aoi float64, params SAPMParams) float64 {
	f1 := polyval([]float64{params.A4, params.A3, params.A2, params.A1, params.A0}, airmassAbsolute)
	f2 := polyval([]float64{params.B5, params.B4, params.B3, params.B2, params.B1, params.B0}, aoi)

	const e0 = 1000.0

	ee := f1 * (poaDirect*f2 + params.FD*poaDiffuse) / e0
	if math.IsNaN(ee) || ee < 0 {
		return 0
	}
	return ee
}

// SAPM evaluates the Sandia PV Array Performance Model at the given
// effective irradiance (suns) and cell temperature (degrees C). Zero
// effective irradiance yields an all-zero result.
func SAPM(effectiveIrradiance, tempCell float64, params SAPMParams) SAPMResult {
	ee := effectiveIrradiance
	if ee <= 0 || math.IsNaN(ee) {
		return SAPMResult{}
	}

	const t0 = 25.0

	delta := params.N * boltzmannJ * (tempCell + 273.15) / elementaryCharge
	logEe := math.Log(ee)
	dT := tempCell - t0

	bVocoPrime := params.BVOCO + params.MBVOC*(1-ee)
	bVmpoPrime := params.BVMPO + params.MBVMP*(1-ee)

	isc := params.ISCO * ee * (1 + params.AISC*dT)
	imp := params.IMPO * (params.C0*ee + params.C1*ee*ee) * (1 + params.AIMP*dT)

	voc := params.VOCO + params.Cells*delta*logEe + bVocoPrime*dT
	if voc < 0 {
		voc = 0
	}
	vmp := params.VMPO + params.C2*params.Cells*delta*logEe +
		params.C3*params.Cells*math.Pow(delta*logEe, 2) + bVmpoPrime*dT
	if vmp < 0 {
		vmp = 0
	}

	ix := params.IXO * (params.C4*ee + params.C5*ee*ee) * (1 + params.AISC*dT)
	ixx := params.IXXO * (params.C6*ee + params.C7*ee*ee) * (1 + params.AISC*dT)

	return SAPMResult{
		IVCurvePoints: IVCurvePoints{
			ISC: isc,
			VOC: voc,
			IMP: imp,
			VMP: vmp,
			PMP: imp * vmp,
			IX:  ix,
			IXX: ixx,
		},
		EffectiveIrradiance: ee,
	}
}

// polyval evaluates a polynomial with coefficients ordered from the
// highest degree down, matching numpy.polyval.
func polyval(coeffs []float64, x float64) float64 {
	var y float64
	for _, c := range coeffs {
		y = y*x + c
	}
	return y
}
