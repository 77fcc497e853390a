// Package solarposition computes the apparent position of the sun for a
// given instant and observer location.
//
// The implementation follows the classic ephemeris approach: solar
// declination and the equation of time from Spencer's Fourier series
// (Spencer, 1971), the hour angle from true solar time, and the usual
// spherical-trigonometry relations for zenith, elevation and azimuth.
// Atmospheric refraction near the horizon is corrected with Bennett's
// formula, yielding the "apparent" angles used by downstream irradiance
// and airmass models.
package solarposition

import (
	"math"
	"time"
)

// SolarPosition holds the computed solar angles for one instant.
// All angles are in degrees. Azimuth is measured east of north
// (north=0, east=90, south=180, west=270), matching the surface azimuth
// convention used throughout the irradiance package.
type SolarPosition struct {
	// Zenith is the true (unrefracted) solar zenith angle.
	Zenith float64
	// ApparentZenith is the zenith angle corrected for atmospheric
	// refraction. This is the input expected by airmass and clear-sky
	// models.
	ApparentZenith float64
	// Elevation is the true solar elevation above the horizon.
	Elevation float64
	// ApparentElevation is the refraction-corrected elevation.
	ApparentElevation float64
	// Azimuth is the solar azimuth angle, degrees east of north.
	Azimuth float64
	// EquationOfTime is the difference between apparent and mean solar
	// time, in minutes.
	EquationOfTime float64
	// Declination is the solar declination angle.
	Declination float64
}

// Position computes the solar position for time t at the given latitude
// and longitude (degrees; east and north positive). The time's own
// location is honored: it is converted to UTC internally, so callers may
// pass timestamps in any zone.
func Position(t time.Time, latitude, longitude float64) SolarPosition {
	utc := t.UTC()

	dayAngle := dayAngleRad(utc)
	declRad := declinationRad(dayAngle)
	eotMin := equationOfTimeMinutes(dayAngle)

	// True solar time in minutes from midnight. The longitude term
	// converts degrees of longitude to minutes of time (4 min/deg).
	clockMin := float64(utc.Hour())*60 + float64(utc.Minute()) +
		float64(utc.Second())/60 + float64(utc.Nanosecond())/6e10
	solarMin := clockMin + 4*longitude + eotMin

	// Hour angle: zero at solar noon, negative in the morning.
	hourAngle := solarMin/4 - 180
	hourAngle = math.Mod(hourAngle+540, 360) - 180
	haRad := radians(hourAngle)

	latRad := radians(latitude)

	cosZenith := math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	cosZenith = clamp(cosZenith, -1, 1)
	zenith := degrees(math.Acos(cosZenith))
	elevation := 90 - zenith

	// Azimuth east of north. atan2 keeps the angle continuous through
	// solar noon.
	azimuth := degrees(math.Atan2(
		math.Sin(haRad),
		math.Cos(haRad)*math.Sin(latRad)-math.Tan(declRad)*math.Cos(latRad),
	)) + 180
	azimuth = math.Mod(azimuth+360, 360)

	apparentElevation := elevation + bennettRefraction(elevation)

	return SolarPosition{
		Zenith:            zenith,
		ApparentZenith:    90 - apparentElevation,
		Elevation:         elevation,
		ApparentElevation: apparentElevation,
		Azimuth:           azimuth,
		EquationOfTime:    eotMin,
		Declination:       degrees(declRad),
	}
}

// dayAngleRad returns the day angle B = 2*pi*(n-1)/365 in radians, where
// n is the day of year, with a fractional-day refinement from the hour.
func dayAngleRad(utc time.Time) float64 {
	doy := float64(utc.YearDay())
	frac := float64(utc.Hour())/24 + float64(utc.Minute())/1440
	return 2 * math.Pi * (doy - 1 + frac) / 365
}

// declinationRad evaluates Spencer's series for solar declination, in
// radians. Maximum error is about 0.0006 rad (~2 arcmin).
func declinationRad(b float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(b) + 0.070257*math.Sin(b) -
		0.006758*math.Cos(2*b) + 0.000907*math.Sin(2*b) -
		0.002697*math.Cos(3*b) + 0.00148*math.Sin(3*b)
}

// equationOfTimeMinutes evaluates Spencer's series for the equation of
// time, in minutes.
func equationOfTimeMinutes(b float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(b) - 0.032077*math.Sin(b) -
		0.014615*math.Cos(2*b) - 0.040849*math.Sin(2*b))
}

// bennettRefraction returns the atmospheric refraction correction in
// degrees for a true elevation angle in degrees (Bennett, 1982). The
// correction is only meaningful near and above the horizon; below -1
// degree of elevation it is forced to zero so night-time zenith angles
// stay unrefracted.
func bennettRefraction(elevation float64) float64 {
	if elevation < -1 {
		return 0
	}
	// Bennett's formula yields arcminutes.
	arcmin := 1.02 / math.Tan(radians(elevation+10.3/(elevation+5.11)))
	return arcmin / 60
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
