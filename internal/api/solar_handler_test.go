package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPosition(t *testing.T) {
	t.Parallel()

	handler := NewSolarHandler()

	t.Run("summer noon in boulder", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/solar/position?lat=40&lon=-105&at=2023-06-21T19:00:00Z", nil)
		recorder := httptest.NewRecorder()

		handler.GetPosition(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeBody[SolarPositionResponse](t, recorder)
		assert.Equal(t, 40.0, resp.Latitude)
		// Sun high in the sky near solar noon on the solstice
		assert.InDelta(t, 17.0, resp.ApparentZenith, 2.0)
		assert.InDelta(t, 180.0, resp.Azimuth, 20.0)
		assert.InDelta(t, 23.45, resp.Declination, 0.2)
	})

	t.Run("defaults to current time", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/solar/position?lat=40&lon=-105", nil)
		recorder := httptest.NewRecorder()

		handler.GetPosition(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeBody[SolarPositionResponse](t, recorder)
		assert.NotEmpty(t, resp.Time)
	})

	tests := []struct {
		name  string
		query string
	}{
		{"missing lat", "lon=-105"},
		{"non-numeric lat", "lat=abc&lon=-105"},
		{"lat out of range", "lat=95&lon=-105"},
		{"lon out of range", "lat=40&lon=200"},
		{"bad timestamp", "lat=40&lon=-105&at=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/solar/position?"+tt.query, nil)
			recorder := httptest.NewRecorder()

			handler.GetPosition(recorder, req)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestGetClearSky(t *testing.T) {
	t.Parallel()

	handler := NewSolarHandler()

	t.Run("daytime GHI", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/solar/clearsky?lat=40&lon=-105&at=2023-06-21T19:00:00Z", nil)
		recorder := httptest.NewRecorder()

		handler.GetClearSky(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeBody[ClearSkyResponse](t, recorder)
		// Clear-sky GHI near solar noon on the solstice is close to 1kW
		assert.Greater(t, resp.GHI, 900.0)
		assert.Less(t, resp.GHI, 1200.0)
	})

	t.Run("zero at night", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/solar/clearsky?lat=40&lon=-105&at=2023-06-21T07:00:00Z", nil)
		recorder := httptest.NewRecorder()

		handler.GetClearSky(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeBody[ClearSkyResponse](t, recorder)
		assert.Equal(t, 0.0, resp.GHI)
	})
}
