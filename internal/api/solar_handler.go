package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/solar/clearsky"
	"github.com/pvgrid/helioserve/internal/solar/solarposition"
)

// SolarHandler handles stateless solar geometry lookups. These
// endpoints need no stored entities; they compute directly from query
// parameters.
type SolarHandler struct{}

// NewSolarHandler creates a new SolarHandler.
func NewSolarHandler() *SolarHandler {
	return &SolarHandler{}
}

// parseLocationQuery extracts lat, lon and the optional at timestamp
// from the query string. A missing at defaults to the current time.
func parseLocationQuery(r *http.Request) (lat, lon float64, at time.Time, err error) {
	q := r.URL.Query()

	lat, err = strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("lat must be a number")
	}
	if lat < -90 || lat > 90 {
		return 0, 0, time.Time{}, fmt.Errorf("lat must be between -90 and 90")
	}

	lon, err = strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("lon must be a number")
	}
	if lon < -180 || lon > 180 {
		return 0, 0, time.Time{}, fmt.Errorf("lon must be between -180 and 180")
	}

	if raw := q.Get("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return 0, 0, time.Time{}, fmt.Errorf("at must be an RFC 3339 timestamp")
		}
	} else {
		at = time.Now().UTC()
	}
	return lat, lon, at, nil
}

func positionResponse(lat, lon float64, at time.Time) SolarPositionResponse {
	pos := solarposition.Position(at, lat, lon)
	return SolarPositionResponse{
		Time:              at.UTC().Format(time.RFC3339),
		Latitude:          lat,
		Longitude:         lon,
		Zenith:            pos.Zenith,
		ApparentZenith:    pos.ApparentZenith,
		Elevation:         pos.Elevation,
		ApparentElevation: pos.ApparentElevation,
		Azimuth:           pos.Azimuth,
		EquationOfTime:    pos.EquationOfTime,
		Declination:       pos.Declination,
	}
}

// GetPosition handles GET /solar/position?lat=&lon=&at=.
func (h *SolarHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	lat, lon, at, err := parseLocationQuery(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, positionResponse(lat, lon, at))
}

// GetClearSky handles GET /solar/clearsky?lat=&lon=&at=. The GHI
// estimate uses the Haurwitz model; zero below the horizon.
func (h *SolarHandler) GetClearSky(w http.ResponseWriter, r *http.Request) {
	lat, lon, at, err := parseLocationQuery(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp := ClearSkyResponse{SolarPositionResponse: positionResponse(lat, lon, at)}
	resp.GHI = clearsky.Haurwitz(resp.ApparentZenith)

	shared.RespondWithJSON(w, http.StatusOK, resp)
}
