// Package clearsky estimates irradiance under cloudless conditions.
package clearsky

import "math"

// Haurwitz returns the clear-sky global horizontal irradiance, W/m^2,
// for the given apparent zenith angle in degrees, using Haurwitz's 1945
// model. The model depends only on the zenith angle, which makes it a
// useful sanity bound on measured GHI; it returns 0 at and below the
// horizon.
func Haurwitz(apparentZenith float64) float64 {
	if apparentZenith >= 90 || math.IsNaN(apparentZenith) {
		return 0
	}
	cosZ := math.Cos(apparentZenith * math.Pi / 180)
	ghi := 1098 * cosZ * math.Exp(-0.059/cosZ)
	if ghi < 0 {
		return 0
	}
	return ghi
}
