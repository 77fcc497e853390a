// Package irradiance transposes horizontal irradiance measurements onto
// arbitrarily tilted surfaces.
//
// The package provides the angle-of-incidence geometry, extraterrestrial
// radiation, the ground-reflected component, and the common sky-diffuse
// transposition models (isotropic, Klucher, Hay-Davies, Reindl). All
// angles are in degrees and all irradiance values in W/m^2.
package irradiance

import (
	"fmt"
	"math"
	"time"
)

// Sky-diffuse transposition model identifiers accepted by SkyDiffuse and
// TotalIrradiance.
const (
	ModelIsotropic = "isotropic"
	ModelKlucher   = "klucher"
	ModelHayDavies = "haydavies"
	ModelReindl    = "reindl"
)

// SolarConstant is the extraterrestrial irradiance at the mean sun-earth
// distance, W/m^2.
const SolarConstant = 1367.0

// SurfaceAlbedos maps ground surface types to typical albedo values, used
// when a system specifies a surface type instead of a numeric albedo.
var SurfaceAlbedos = map[string]float64{
	"urban":       0.18,
	"grass":       0.20,
	"fresh grass": 0.26,
	"soil":        0.17,
	"sand":        0.40,
	"snow":        0.65,
	"fresh snow":  0.75,
	"asphalt":     0.12,
	"concrete":    0.30,
	"aluminum":    0.85,
	"copper":      0.74,
	"fresh steel": 0.35,
	"dirty steel": 0.08,
	"sea":         0.06,
}

// DefaultAlbedo is used when neither an albedo nor a known surface type
// is given.
const DefaultAlbedo = 0.25

// AlbedoForSurface returns the albedo for the named surface type, falling
// back to DefaultAlbedo for unknown or empty names.
func AlbedoForSurface(surfaceType string) float64 {
	if a, ok := SurfaceAlbedos[surfaceType]; ok {
		return a
	}
	return DefaultAlbedo
}

// POAIrradiance holds the plane-of-array irradiance components produced
// by TotalIrradiance.
type POAIrradiance struct {
	Global        float64 `json:"poa_global"`
	Direct        float64 `json:"poa_direct"`
	Diffuse       float64 `json:"poa_diffuse"`
	SkyDiffuse    float64 `json:"poa_sky_diffuse"`
	GroundDiffuse float64 `json:"poa_ground_diffuse"`
}

// ExtraterrestrialRadiation returns the extraterrestrial direct normal
// irradiance for the given time, accounting for the eccentricity of the
// earth's orbit via Spencer's series.
func ExtraterrestrialRadiation(t time.Time) float64 {
	doy := float64(t.UTC().YearDay())
	b := 2 * math.Pi * (doy - 1) / 365
	rFactor := 1.00011 +
		0.034221*math.Cos(b) + 0.00128*math.Sin(b) +
		0.000719*math.Cos(2*b) + 0.000077*math.Sin(2*b)
	return SolarConstant * rFactor
}

// AOIProjection returns the cosine of the angle of incidence of the
// sun-beam vector on a surface with the given tilt and azimuth. The value
// may be negative when the sun is behind the surface.
func AOIProjection(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth float64) float64 {
	return cosd(surfaceTilt)*cosd(solarZenith) +
		sind(surfaceTilt)*sind(solarZenith)*cosd(solarAzimuth-surfaceAzimuth)
}

// AOI returns the angle of incidence, in degrees, between the surface
// normal and the sun-beam vector.
func AOI(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth float64) float64 {
	proj := AOIProjection(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth)
	return degrees(math.Acos(clamp(proj, -1, 1)))
}

// BeamComponent returns the direct irradiance on the tilted surface:
// DNI projected onto the surface normal, floored at zero when the sun is
// behind the plane or below the horizon.
func BeamComponent(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth, dni float64) float64 {
	proj := AOIProjection(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth)
	if solarZenith >= 90 || proj <= 0 {
		return 0
	}
	return dni * proj
}

// Isotropic computes sky-diffuse irradiance on a tilted surface under the
// isotropic-sky assumption (Loutzenhiser et al. model 1): the tilted
// plane sees a fraction (1+cos(tilt))/2 of an isotropic diffuse dome.
func Isotropic(surfaceTilt, dhi float64) float64 {
	return dhi * (1 + cosd(surfaceTilt)) / 2
}

// Klucher computes sky-diffuse irradiance using Klucher's 1979 model,
// which adds horizon and circumsolar brightening terms to the isotropic
// dome, modulated by a clearness function of DHI/GHI.
func Klucher(surfaceTilt, surfaceAzimuth, dhi, ghi, solarZenith, solarAzimuth float64) float64 {
	if ghi <= 0 {
		return Isotropic(surfaceTilt, dhi)
	}
	f := 1 - math.Pow(dhi/ghi, 2)
	cosAOI := clamp(AOIProjection(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth), -1, 1)
	sinHalfTilt := sind(surfaceTilt / 2)
	term1 := 1 + f*sinHalfTilt*sinHalfTilt*sinHalfTilt
	term2 := 1 + f*cosAOI*cosAOI*math.Pow(sind(solarZenith), 3)
	return Isotropic(surfaceTilt, dhi) * term1 * term2
}

// HayDavies computes sky-diffuse irradiance using the Hay-Davies 1980
// model: a circumsolar fraction weighted by the anisotropy index
// AI = DNI/DNIExtra is treated as beam, the remainder as isotropic.
func HayDavies(surfaceTilt, surfaceAzimuth, dhi, dni, dniExtra, solarZenith, solarAzimuth float64) float64 {
	if dniExtra <= 0 {
		return Isotropic(surfaceTilt, dhi)
	}
	ai := dni / dniExtra
	rb := beamRatio(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth)
	return dhi * (ai*rb + (1-ai)*(1+cosd(surfaceTilt))/2)
}

// Reindl computes sky-diffuse irradiance using the Reindl 1990 model,
// which extends Hay-Davies with a horizon-brightening correction driven
// by the beam fraction of global horizontal irradiance.
func Reindl(surfaceTilt, surfaceAzimuth, dhi, dni, ghi, dniExtra, solarZenith, solarAzimuth float64) float64 {
	if dniExtra <= 0 {
		return Isotropic(surfaceTilt, dhi)
	}
	ai := dni / dniExtra
	rb := beamRatio(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth)

	hb := 0.0
	if ghi > 0 {
		beamHorizontal := dni * math.Max(cosd(solarZenith), 0)
		ratio := beamHorizontal / ghi
		if ratio > 0 {
			sinHalfTilt := sind(surfaceTilt / 2)
			hb = math.Sqrt(ratio) * sinHalfTilt * sinHalfTilt * sinHalfTilt
		}
	}

	return dhi * (ai*rb + (1-ai)*(1+cosd(surfaceTilt))/2*(1+hb))
}

// GroundDiffuse returns the ground-reflected irradiance on the tilted
// surface for the given ground albedo.
func GroundDiffuse(surfaceTilt, ghi, albedo float64) float64 {
	return ghi * albedo * (1 - cosd(surfaceTilt)) / 2
}

// SkyDiffuse dispatches to the named transposition model. Model names are
// the Model* constants; an unknown name is an error.
func SkyDiffuse(model string, surfaceTilt, surfaceAzimuth, dhi, dni, ghi, dniExtra, solarZenith, solarAzimuth float64) (float64, error) {
	switch model {
	case ModelIsotropic:
		return Isotropic(surfaceTilt, dhi), nil
	case ModelKlucher:
		return Klucher(surfaceTilt, surfaceAzimuth, dhi, ghi, solarZenith, solarAzimuth), nil
	case ModelHayDavies:
		return HayDavies(surfaceTilt, surfaceAzimuth, dhi, dni, dniExtra, solarZenith, solarAzimuth), nil
	case ModelReindl:
		return Reindl(surfaceTilt, surfaceAzimuth, dhi, dni, ghi, dniExtra, solarZenith, solarAzimuth), nil
	default:
		return 0, fmt.Errorf("unknown sky diffuse model %q", model)
	}
}

// TotalIrradiance computes all plane-of-array irradiance components for a
// tilted surface: beam, sky diffuse via the selected transposition model,
// and ground-reflected diffuse.
func TotalIrradiance(model string, surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth, dni, ghi, dhi, dniExtra, albedo float64) (POAIrradiance, error) {
	sky, err := SkyDiffuse(model, surfaceTilt, surfaceAzimuth, dhi, dni, ghi, dniExtra, solarZenith, solarAzimuth)
	if err != nil {
		return POAIrradiance{}, err
	}
	beam := BeamComponent(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth, dni)
	ground := GroundDiffuse(surfaceTilt, ghi, albedo)

	diffuse := sky + ground
	return POAIrradiance{
		Global:        beam + diffuse,
		Direct:        beam,
		Diffuse:       diffuse,
		SkyDiffuse:    sky,
		GroundDiffuse: ground,
	}, nil
}

// beamRatio is the ratio of beam irradiance on the tilted plane to beam
// irradiance on the horizontal, with the customary clamping of the solar
// zenith cosine away from zero to avoid the sunrise/sunset singularity.
func beamRatio(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth float64) float64 {
	cosAOI := math.Max(AOIProjection(surfaceTilt, surfaceAzimuth, solarZenith, solarAzimuth), 0)
	cosZenith := math.Max(cosd(solarZenith), 0.01745) // cos(89 deg)
	return cosAOI / cosZenith
}

func sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }

func cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }

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
