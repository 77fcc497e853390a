package api

import (
	"net/http"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/service"
)

// SystemHandler handles PV system management API requests.
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler with the given dependencies.
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// CreateSystem handles POST /systems.
func (h *SystemHandler) CreateSystem(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SystemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	system, err := h.systemService.CreateSystem(r.Context(), userID, req.toDomain())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, system)
}

// GetSystem handles GET /systems/{id}.
func (h *SystemHandler) GetSystem(w http.ResponseWriter, r *http.Request) {
	userID, systemID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	system, err := h.systemService.GetSystem(r.Context(), userID, systemID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, system)
}

// ListSystems handles GET /sites/{id}/systems.
func (h *SystemHandler) ListSystems(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	systems, err := h.systemService.ListSystems(r.Context(), userID, siteID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, systems)
}

// UpdateSystem handles PUT /systems/{id}.
func (h *SystemHandler) UpdateSystem(w http.ResponseWriter, r *http.Request) {
	userID, systemID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SystemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	system := req.toDomain()
	system.ID = systemID
	if err := h.systemService.UpdateSystem(r.Context(), userID, system); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, system)
}

// DeleteSystem handles DELETE /systems/{id}.
func (h *SystemHandler) DeleteSystem(w http.ResponseWriter, r *http.Request) {
	userID, systemID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.systemService.DeleteSystem(r.Context(), userID, systemID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
