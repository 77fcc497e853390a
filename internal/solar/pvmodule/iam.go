package pvmodule

import "math"

// IAMAshrae computes the ASHRAE transmission incidence angle modifier
// 1 - b*(1/cos(aoi) - 1) for an angle of incidence in degrees. The
// modifier is NaN for |aoi| >= 90 and clipped to zero where the formula
// turns negative at grazing angles.
func IAMAshrae(aoi, b float64) float64 {
	if math.IsNaN(aoi) || math.Abs(aoi) >= 90 {
		return math.NaN()
	}
	iam := 1 - b*(1/math.Cos(aoi*math.Pi/180)-1)
	if iam < 0 {
		return 0
	}
	return iam
}

// IAMPhysical computes the physical (Fresnel plus Bougher absorption)
// incidence angle modifier of De Soto et al. (2006) for an angle of
// incidence in degrees. n is the refractive index of the glazing, k the
// glazing extinction coefficient (1/m) and l the glazing thickness (m).
// The modifier is the ratio of transmittance at aoi to transmittance at
// normal incidence and is zero for |aoi| >= 90.
func IAMPhysical(aoi, n, k, l float64) float64 {
	if math.IsNaN(aoi) {
		return math.NaN()
	}
	if math.Abs(aoi) >= 90 {
		return 0
	}

	thetaI := math.Abs(aoi) * math.Pi / 180
	if thetaI < 1e-9 {
		return 1
	}
	// Snell's law, air to glazing.
	thetaR := math.Asin(math.Sin(thetaI) / n)

	tau := math.Exp(-k * l / math.Cos(thetaR)) *
		(1 - 0.5*(math.Pow(math.Sin(thetaR-thetaI), 2)/math.Pow(math.Sin(thetaR+thetaI), 2)+
			math.Pow(math.Tan(thetaR-thetaI), 2)/math.Pow(math.Tan(thetaR+thetaI), 2)))

	// Transmittance at normal incidence.
	tau0 := math.Exp(-k*l) * (1 - math.Pow((1-n)/(1+n), 2))

	iam := tau / tau0
	if iam < 0 {
		return 0
	}
	return iam
}
