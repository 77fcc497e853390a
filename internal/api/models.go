package api

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint. A refresh rotates both tokens.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SiteRequest defines the payload for creating or updating a site.
type SiteRequest struct {
	Name      string  `json:"name"      validate:"required,max=200"`
	Latitude  float64 `json:"latitude"  validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Altitude  float64 `json:"altitude"`
	Timezone  string  `json:"timezone"  validate:"omitempty,max=64"`
}

// TrackingRequest mirrors domain.TrackingConfig for system payloads.
type TrackingRequest struct {
	AxisTilt    float64 `json:"axis_tilt"    validate:"min=0,max=90"`
	AxisAzimuth float64 `json:"axis_azimuth" validate:"min=0,max=360"`
	MaxAngle    float64 `json:"max_angle"    validate:"omitempty,min=0,max=180"`
	Backtrack   bool    `json:"backtrack"`
	GCR         float64 `json:"gcr"          validate:"omitempty,gt=0,lte=1"`
}

// SystemRequest defines the payload for creating or updating a system.
// Module and inverter coefficients may be embedded as maps or referenced
// by database name; the service resolves names against the parameter
// catalog.
type SystemRequest struct {
	SiteID uuid.UUID `json:"site_id" validate:"required"`
	Name   string    `json:"name"    validate:"required,max=200"`

	SurfaceTilt    float64          `json:"surface_tilt"    validate:"min=0,max=180"`
	SurfaceAzimuth float64          `json:"surface_azimuth" validate:"min=0,max=360"`
	Tracking       *TrackingRequest `json:"tracking,omitempty"`

	ModuleName         string             `json:"module_name,omitempty"`
	ModuleParameters   map[string]float64 `json:"module_parameters,omitempty"`
	InverterName       string             `json:"inverter_name,omitempty"`
	InverterParameters map[string]float64 `json:"inverter_parameters,omitempty"`

	ModulesPerString   int `json:"modules_per_string"   validate:"omitempty,min=1"`
	StringsPerInverter int `json:"strings_per_inverter" validate:"omitempty,min=1"`

	RackingModel       string   `json:"racking_model,omitempty"       validate:"omitempty,max=64"`
	TranspositionModel string   `json:"transposition_model,omitempty" validate:"omitempty,oneof=isotropic klucher haydavies reindl"`
	SurfaceType        string   `json:"surface_type,omitempty"        validate:"omitempty,max=64"`
	Albedo             *float64 `json:"albedo,omitempty"              validate:"omitempty,gte=0,lte=1"`
	DCModel            string   `json:"dc_model,omitempty"            validate:"omitempty,oneof=sapm singlediode pvwatts"`
	ACModel            string   `json:"ac_model,omitempty"            validate:"omitempty,oneof=snlinverter pvwatts"`
}

// toDomain converts the request into a domain system for the service
// layer. ID, UserID and timestamps are assigned by the service.
func (req *SystemRequest) toDomain() *domain.System {
	system := &domain.System{
		SiteID:             req.SiteID,
		Name:               req.Name,
		SurfaceTilt:        req.SurfaceTilt,
		SurfaceAzimuth:     req.SurfaceAzimuth,
		ModuleName:         req.ModuleName,
		ModuleParameters:   req.ModuleParameters,
		InverterName:       req.InverterName,
		InverterParameters: req.InverterParameters,
		ModulesPerString:   req.ModulesPerString,
		StringsPerInverter: req.StringsPerInverter,
		RackingModel:       req.RackingModel,
		TranspositionModel: req.TranspositionModel,
		SurfaceType:        req.SurfaceType,
		Albedo:             req.Albedo,
		DCModel:            req.DCModel,
		ACModel:            req.ACModel,
	}
	if req.Tracking != nil {
		system.Tracking = &domain.TrackingConfig{
			AxisTilt:    req.Tracking.AxisTilt,
			AxisAzimuth: req.Tracking.AxisAzimuth,
			MaxAngle:    req.Tracking.MaxAngle,
			Backtrack:   req.Tracking.Backtrack,
			GCR:         req.Tracking.GCR,
		}
	}
	return system
}

// CreateSimulationRequest defines the payload for requesting an
// asynchronous simulation run. Weather is kept raw; the service parses
// and validates the series.
type CreateSimulationRequest struct {
	SystemID uuid.UUID       `json:"system_id" validate:"required"`
	Weather  json.RawMessage `json:"weather"   validate:"required"`
}

// SolarPositionResponse defines the response for the solar position and
// clear-sky endpoints.
type SolarPositionResponse struct {
	Time              string  `json:"time"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Zenith            float64 `json:"zenith"`
	ApparentZenith    float64 `json:"apparent_zenith"`
	Elevation         float64 `json:"elevation"`
	ApparentElevation float64 `json:"apparent_elevation"`
	Azimuth           float64 `json:"azimuth"`
	EquationOfTime    float64 `json:"equation_of_time"`
	Declination       float64 `json:"declination"`
}

// ClearSkyResponse extends the position lookup with a Haurwitz GHI
// estimate.
type ClearSkyResponse struct {
	SolarPositionResponse
	GHI float64 `json:"ghi"`
}

// ParameterListResponse defines the response for the parameter database
// listing endpoints.
type ParameterListResponse struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// ParameterEntryResponse defines the response for a single parameter
// database entry.
type ParameterEntryResponse struct {
	Name       string             `json:"name"`
	Parameters map[string]float64 `json:"parameters"`
}
