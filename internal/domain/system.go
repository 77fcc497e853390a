package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// System validation errors.
var (
	ErrEmptySystemID        = errors.New("system ID cannot be empty")
	ErrSystemWithoutSite    = errors.New("system must belong to a site")
	ErrSystemWithoutOwner   = errors.New("system must belong to a user")
	ErrEmptySystemName      = errors.New("system name cannot be empty")
	ErrTiltOutOfRange       = errors.New("surface tilt must be between 0 and 180")
	ErrAzimuthOutOfRange    = errors.New("surface azimuth must be between 0 and 360")
	ErrNoModuleParameters   = errors.New("system requires module parameters or a module name")
	ErrInvalidStringSizing  = errors.New("modules per string and strings per inverter must be positive")
	ErrAlbedoOutOfRange     = errors.New("albedo must be between 0 and 1")
)

// TrackingConfig describes a single-axis tracker mount. A nil
// TrackingConfig on a System means a fixed mount.
type TrackingConfig struct {
	AxisTilt    float64 `json:"axis_tilt"`
	AxisAzimuth float64 `json:"axis_azimuth"`
	MaxAngle    float64 `json:"max_angle,omitempty"`
	Backtrack   bool    `json:"backtrack,omitempty"`
	GCR         float64 `json:"gcr,omitempty"`
}

// System is a PV array plus inverter installed at a site. Module and
// inverter coefficients are either embedded directly or referenced by
// database name and resolved at simulation time.
type System struct {
	ID     uuid.UUID `json:"id"`
	SiteID uuid.UUID `json:"site_id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`

	SurfaceTilt    float64         `json:"surface_tilt"`
	SurfaceAzimuth float64         `json:"surface_azimuth"`
	Tracking       *TrackingConfig `json:"tracking,omitempty"`

	ModuleName         string             `json:"module_name,omitempty"`
	ModuleParameters   map[string]float64 `json:"module_parameters,omitempty"`
	InverterName       string             `json:"inverter_name,omitempty"`
	InverterParameters map[string]float64 `json:"inverter_parameters,omitempty"`

	ModulesPerString   int `json:"modules_per_string"`
	StringsPerInverter int `json:"strings_per_inverter"`

	RackingModel       string `json:"racking_model,omitempty"`
	TranspositionModel string `json:"transposition_model,omitempty"`

	// SurfaceType names the ground cover for albedo lookup; a non-nil
	// Albedo takes precedence over it.
	SurfaceType string   `json:"surface_type,omitempty"`
	Albedo      *float64 `json:"albedo,omitempty"`

	DCModel string `json:"dc_model,omitempty"`
	ACModel string `json:"ac_model,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSystem creates a System with a fresh ID and timestamps. String
// sizing defaults to one module on one string.
func NewSystem(siteID, userID uuid.UUID, name string) (*System, error) {
	now := time.Now().UTC()
	system := &System{
		ID:                 uuid.New(),
		SiteID:             siteID,
		UserID:             userID,
		Name:               name,
		ModulesPerString:   1,
		StringsPerInverter: 1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return system, nil
}

// Validate checks field constraints. Either embedded module parameters
// or a module database name must be present.
func (s *System) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySystemID
	}
	if s.SiteID == uuid.Nil {
		return ErrSystemWithoutSite
	}
	if s.UserID == uuid.Nil {
		return ErrSystemWithoutOwner
	}
	if s.Name == "" {
		return ErrEmptySystemName
	}
	if s.SurfaceTilt < 0 || s.SurfaceTilt > 180 {
		return ErrTiltOutOfRange
	}
	if s.SurfaceAzimuth < 0 || s.SurfaceAzimuth > 360 {
		return ErrAzimuthOutOfRange
	}
	if len(s.ModuleParameters) == 0 && s.ModuleName == "" {
		return ErrNoModuleParameters
	}
	if s.ModulesPerString < 1 || s.StringsPerInverter < 1 {
		return ErrInvalidStringSizing
	}
	if s.Albedo != nil && (*s.Albedo < 0 || *s.Albedo > 1) {
		return ErrAlbedoOutOfRange
	}
	return nil
}
