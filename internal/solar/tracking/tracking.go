// Package tracking models the geometry of single-axis solar trackers.
//
// A single-axis tracker rotates a module about a fixed axis to follow
// the sun across the sky. The rotation angle that aligns the module
// normal with the projection of the sun vector onto the plane normal to
// the axis is the "true tracking" angle; with backtracking enabled the
// tracker backs off that angle at low sun to avoid row-to-row shading,
// using the ground coverage ratio of the array.
package tracking

import (
	"math"

	"github.com/pvgrid/helioserve/internal/solar/solarposition"
)

// SingleAxisConfig describes a single-axis tracker.
type SingleAxisConfig struct {
	// AxisTilt is the tilt of the rotation axis from horizontal, degrees.
	AxisTilt float64 `json:"axis_tilt"`
	// AxisAzimuth is the compass direction the axis points, degrees east
	// of north. A north-south axis is 180 (or 0).
	AxisAzimuth float64 `json:"axis_azimuth"`
	// MaxAngle is the mechanical rotation limit, degrees. Zero means the
	// default of 90.
	MaxAngle float64 `json:"max_angle"`
	// Backtrack enables the backtracking correction.
	Backtrack bool `json:"backtrack"`
	// GCR is the ground coverage ratio (collector width over row pitch)
	// used by backtracking. Zero means the default of 2/7.
	GCR float64 `json:"gcr"`
}

// TrackerOrientation is the instantaneous orientation of the tracker and
// the resulting sun-module geometry. Angles are degrees.
type TrackerOrientation struct {
	// TrackerTheta is the signed rotation about the axis. When the sun
	// is below the horizon all fields are NaN.
	TrackerTheta float64 `json:"tracker_theta"`
	// AOI is the angle of incidence of the beam on the rotated module.
	AOI float64 `json:"aoi"`
	// SurfaceTilt and SurfaceAzimuth describe the rotated module plane
	// in the fixed-surface convention, for use with the transposition
	// models.
	SurfaceTilt    float64 `json:"surface_tilt"`
	SurfaceAzimuth float64 `json:"surface_azimuth"`
}

// DefaultGCR is the ground coverage ratio assumed when a tracker config
// does not provide one.
const DefaultGCR = 2.0 / 7.0

// SingleAxis computes the tracker rotation and resulting module
// orientation for the given solar position.
//
// The rotation angle is found by projecting the sun vector into the
// plane perpendicular to the tracker axis. With backtracking enabled the
// angle is reduced once adjacent rows would begin to shade each other,
// and in all cases the angle is clamped to the mechanical limit.
func SingleAxis(pos solarposition.SolarPosition, cfg SingleAxisConfig) TrackerOrientation {
	if pos.ApparentZenith >= 90 {
		nan := math.NaN()
		return TrackerOrientation{TrackerTheta: nan, AOI: nan, SurfaceTilt: nan, SurfaceAzimuth: nan}
	}

	maxAngle := cfg.MaxAngle
	if maxAngle == 0 {
		maxAngle = 90
	}
	gcr := cfg.GCR
	if gcr == 0 {
		gcr = DefaultGCR
	}

	// Sun unit vector in east-north-up coordinates.
	sx := sind(pos.ApparentZenith) * sind(pos.Azimuth)
	sy := sind(pos.ApparentZenith) * cosd(pos.Azimuth)
	sz := cosd(pos.ApparentZenith)

	// Axis unit vector, tilted AxisTilt up toward AxisAzimuth.
	ax := sind(cfg.AxisAzimuth) * cosd(cfg.AxisTilt)
	ay := cosd(cfg.AxisAzimuth) * cosd(cfg.AxisTilt)
	az := sind(cfg.AxisTilt)

	// Module normal at zero rotation: perpendicular to the axis, in the
	// vertical plane containing it.
	ux := -sind(cfg.AxisTilt) * sind(cfg.AxisAzimuth)
	uy := -sind(cfg.AxisTilt) * cosd(cfg.AxisAzimuth)
	uz := cosd(cfg.AxisTilt)

	// Completing the right-handed axis frame: v = a x u points along the
	// direction of positive rotation.
	vx := ay*uz - az*uy
	vy := az*ux - ax*uz
	vz := ax*uy - ay*ux

	// True-tracking rotation: angle of the sun's projection onto the
	// (u, v) plane, measured from u toward v.
	theta := degrees(math.Atan2(
		sx*vx+sy*vy+sz*vz,
		sx*ux+sy*uy+sz*uz,
	))

	// Backtracking: once the inter-row shadow would reach the next row
	// (|cos theta| < gcr), back the tracker off by the shading angle.
	if cfg.Backtrack {
		projection := cosd(theta) / gcr
		if projection < 1 {
			correction := degrees(math.Acos(clamp(projection, -1, 1)))
			theta -= math.Copysign(correction, theta)
		}
	}

	theta = clamp(theta, -maxAngle, maxAngle)

	// Rotate the zero-rotation normal about the axis by theta
	// (Rodrigues' formula reduces to n = u cos + v sin since u,v are the
	// orthonormal frame of the rotation plane).
	nx := ux*cosd(theta) + vx*sind(theta)
	ny := uy*cosd(theta) + vy*sind(theta)
	nz := uz*cosd(theta) + vz*sind(theta)

	surfaceTilt := degrees(math.Acos(clamp(nz, -1, 1)))
	surfaceAzimuth := math.Mod(degrees(math.Atan2(nx, ny))+360, 360)

	cosAOI := clamp(nx*sx+ny*sy+nz*sz, -1, 1)
	aoi := degrees(math.Acos(cosAOI))

	return TrackerOrientation{
		TrackerTheta:   theta,
		AOI:            aoi,
		SurfaceTilt:    surfaceTilt,
		SurfaceAzimuth: surfaceAzimuth,
	}
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
