package api

import (
	"net/http"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/domain"
	"github.com/pvgrid/helioserve/internal/service"
)

// SiteHandler handles site management API requests.
type SiteHandler struct {
	siteService *service.SiteService
}

// NewSiteHandler creates a new SiteHandler with the given dependencies.
func NewSiteHandler(siteService *service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

// CreateSite handles POST /sites.
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SiteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	site, err := h.siteService.CreateSite(r.Context(), userID,
		req.Name, req.Latitude, req.Longitude, req.Altitude, req.Timezone)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, site)
}

// GetSite handles GET /sites/{id}.
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(r.Context(), userID, siteID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, site)
}

// ListSites handles GET /sites.
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	sites, err := h.siteService.ListSites(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, sites)
}

// UpdateSite handles PUT /sites/{id}.
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SiteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	site := &domain.Site{
		ID:        siteID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Altitude:  req.Altitude,
		Timezone:  req.Timezone,
	}
	if err := h.siteService.UpdateSite(r.Context(), userID, site); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, site)
}

// DeleteSite handles DELETE /sites/{id}.
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.siteService.DeleteSite(r.Context(), userID, siteID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
