package pvmodule

import (
	"fmt"
	"sort"
)

// paramReader collects lookups into a parameter map and accumulates the
// keys that were missing, so decoders can report every absent coefficient
// at once.
type paramReader struct {
	params  map[string]float64
	missing []string
}

func (r *paramReader) get(key string) float64 {
	v, ok := r.params[key]
	if !ok {
		r.missing = append(r.missing, key)
	}
	return v
}

func (r *paramReader) getDefault(key string, def float64) float64 {
	if v, ok := r.params[key]; ok {
		return v
	}
	return def
}

func (r *paramReader) err(kind string) error {
	if len(r.missing) == 0 {
		return nil
	}
	sort.Strings(r.missing)
	return fmt.Errorf("%s parameters missing keys %v", kind, r.missing)
}

// SAPMParamsFromMap decodes Sandia module database coefficients. All
// listed coefficients are required except FD, which defaults to 1.
func SAPMParamsFromMap(params map[string]float64) (SAPMParams, error) {
	r := &paramReader{params: params}
	p := SAPMParams{
		Cells: r.get("Cells_in_Series"),
		ISCO:  r.get("Isco"),
		IMPO:  r.get("Impo"),
		VOCO:  r.get("Voco"),
		VMPO:  r.get("Vmpo"),
		AISC:  r.get("Aisc"),
		AIMP:  r.get("Aimp"),
		BVOCO: r.get("Bvoco"),
		MBVOC: r.getDefault("Mbvoc", 0),
		BVMPO: r.get("Bvmpo"),
		MBVMP: r.getDefault("Mbvmp", 0),
		N:     r.get("N"),
		C0:    r.get("C0"), C1: r.get("C1"),
		C2: r.get("C2"), C3: r.get("C3"),
		C4: r.get("C4"), C5: r.get("C5"),
		C6: r.get("C6"), C7: r.get("C7"),
		IXO:  r.get("IXO"),
		IXXO: r.get("IXXO"),
		A0:   r.get("A0"), A1: r.get("A1"), A2: r.get("A2"),
		A3: r.get("A3"), A4: r.get("A4"),
		B0: r.get("B0"), B1: r.get("B1"), B2: r.get("B2"),
		B3: r.get("B3"), B4: r.get("B4"), B5: r.get("B5"),
		FD: r.getDefault("FD", 1),
	}
	return p, r.err("sandia module")
}

// DeSotoParamsFromMap decodes CEC module database coefficients for the
// single-diode model. EgRef and dEgdT default to the crystalline silicon
// values when absent.
func DeSotoParamsFromMap(params map[string]float64) (DeSotoParams, error) {
	r := &paramReader{params: params}
	p := DeSotoParams{
		ARef:    r.get("a_ref"),
		ILRef:   r.get("I_L_ref"),
		I0Ref:   r.get("I_o_ref"),
		RShRef:  r.get("R_sh_ref"),
		RS:      r.get("R_s"),
		AlphaSC: r.get("alpha_sc"),
		EgRef:   r.getDefault("EgRef", 1.121),
		DEgDT:   r.getDefault("dEgdT", -0.0002677),
	}
	return p, r.err("single-diode module")
}

// SNLInverterParamsFromMap decodes CEC inverter database coefficients.
func SNLInverterParamsFromMap(params map[string]float64) (SNLInverterParams, error) {
	r := &paramReader{params: params}
	p := SNLInverterParams{
		Paco: r.get("Paco"),
		Pdco: r.get("Pdco"),
		Vdco: r.get("Vdco"),
		Pso:  r.get("Pso"),
		C0:   r.get("C0"),
		C1:   r.get("C1"),
		C2:   r.get("C2"),
		C3:   r.get("C3"),
		Pnt:  r.get("Pnt"),
	}
	return p, r.err("sandia inverter")
}

// PVWattsDCParamsFromMap decodes the two PVWatts module parameters.
func PVWattsDCParamsFromMap(params map[string]float64) (PVWattsDCParams, error) {
	r := &paramReader{params: params}
	p := PVWattsDCParams{
		PDC0:     r.get("pdc0"),
		GammaPDC: r.get("gamma_pdc"),
	}
	return p, r.err("pvwatts module")
}
