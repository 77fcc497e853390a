package modelchain

import "fmt"

// DC and AC model identifiers accepted in SystemConfig and produced by
// inference.
const (
	DCModelSAPM        = "sapm"
	DCModelSingleDiode = "singlediode"
	DCModelPVWatts     = "pvwatts"

	ACModelSNLInverter = "snlinverter"
	ACModelPVWatts     = "pvwatts"
)

func hasKeys(params map[string]float64, keys ...string) bool {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return false
		}
	}
	return true
}

// InferDCModel picks the DC model implied by the module parameter set:
// Sandia coefficients select SAPM, CEC single-diode coefficients select
// the single-diode model, and the PVWatts pair selects PVWatts. A
// parameter set matching none of them is an error.
func InferDCModel(moduleParams map[string]float64) (string, error) {
	switch {
	case hasKeys(moduleParams, "A0", "A1", "C7"):
		return DCModelSAPM, nil
	case hasKeys(moduleParams, "a_ref", "I_L_ref", "I_o_ref", "R_sh_ref", "R_s"):
		return DCModelSingleDiode, nil
	case hasKeys(moduleParams, "pdc0", "gamma_pdc"):
		return DCModelPVWatts, nil
	default:
		return "", fmt.Errorf("module parameters match no known DC model")
	}
}

// InferACModel picks the AC model implied by the parameter sets: Sandia
// inverter coefficients select the Sandia inverter model, otherwise a
// PVWatts module selects the PVWatts inverter. Anything else is an error.
func InferACModel(inverterParams, moduleParams map[string]float64) (string, error) {
	switch {
	case hasKeys(inverterParams, "C0", "C1", "C2"):
		return ACModelSNLInverter, nil
	case hasKeys(moduleParams, "pdc0"):
		return ACModelPVWatts, nil
	default:
		return "", fmt.Errorf("inverter parameters match no known AC model")
	}
}
