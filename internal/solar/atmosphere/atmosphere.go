// Package atmosphere provides airmass models and the standard-atmosphere
// pressure/altitude relations used to correct irradiance models for the
// optical path length through the atmosphere.
package atmosphere

import (
	"fmt"
	"math"
)

// Relative airmass model identifiers accepted by RelativeAirmass.
const (
	ModelKastenYoung1989 = "kastenyoung1989"
	ModelSimple          = "simple"
	ModelGueymard1993    = "gueymard1993"
)

// StandardPressure is sea-level standard atmospheric pressure, Pa.
const StandardPressure = 101325.0

// RelativeAirmass computes the relative (not pressure-corrected) airmass
// at the given apparent zenith angle in degrees.
//
// Supported models:
//   - kastenyoung1989: Kasten & Young (1989), accurate to the horizon and
//     the customary default.
//   - simple: the secant of the zenith angle; diverges near the horizon.
//   - gueymard1993: Gueymard (1993).
//
// Returns NaN when the sun is below the horizon (zenith > 90), matching
// the convention of downstream models that propagate NaN through night
// samples. An unknown model name is an error.
func RelativeAirmass(apparentZenith float64, model string) (float64, error) {
	if apparentZenith > 90 || apparentZenith < 0 {
		// Validate the model name even for night samples so a bad
		// configuration fails on the first data point.
		switch model {
		case ModelKastenYoung1989, ModelSimple, ModelGueymard1993:
			return math.NaN(), nil
		default:
			return 0, fmt.Errorf("unknown airmass model %q", model)
		}
	}

	z := apparentZenith
	cosZ := math.Cos(z * math.Pi / 180)

	switch model {
	case ModelKastenYoung1989:
		return 1 / (cosZ + 0.50572*math.Pow(96.07995-z, -1.6364)), nil
	case ModelSimple:
		return 1 / cosZ, nil
	case ModelGueymard1993:
		return 1 / (cosZ + 0.00176759*z*math.Pow(94.37515-z, -1.21563)), nil
	default:
		return 0, fmt.Errorf("unknown airmass model %q", model)
	}
}

// AbsoluteAirmass converts relative airmass to absolute (pressure
// corrected) airmass for the given station pressure in Pa. NaN inputs
// propagate.
func AbsoluteAirmass(airmassRelative, pressure float64) float64 {
	return airmassRelative * pressure / StandardPressure
}

// AltitudeToPressure returns the standard-atmosphere pressure in Pa at
// the given altitude in meters.
func AltitudeToPressure(altitude float64) float64 {
	return 100 * math.Pow((44331.514-altitude)/11880.516, 1/0.1902632)
}

// PressureToAltitude returns the standard-atmosphere altitude in meters
// for the given pressure in Pa.
func PressureToAltitude(pressure float64) float64 {
	return 44331.5 - 4946.62*math.Pow(pressure, 0.190263)
}

// InferPressureAltitude fills in whichever of altitude and pressure is
// missing. With both nil it assumes sea level; with one present the other
// is derived from the standard atmosphere.
func InferPressureAltitude(altitude, pressure *float64) (alt, pres float64) {
	switch {
	case altitude == nil && pressure == nil:
		return 0, StandardPressure
	case altitude == nil:
		return PressureToAltitude(*pressure), *pressure
	case pressure == nil:
		return *altitude, AltitudeToPressure(*altitude)
	default:
		return *altitude, *pressure
	}
}
