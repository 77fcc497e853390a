package api

import (
	"net/http"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/service"
)

// SimulationHandler handles simulation run API requests.
type SimulationHandler struct {
	simulationService *service.SimulationService
}

// NewSimulationHandler creates a new SimulationHandler with the given
// dependencies.
func NewSimulationHandler(simulationService *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

// CreateSimulation handles POST /simulations. The run is persisted as
// pending and executed in the background; the response carries the run
// record the client can poll.
func (h *SimulationHandler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateSimulationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	run, err := h.simulationService.CreateRun(r.Context(), userID, req.SystemID, req.Weather)
	if err != nil {
		// A persisted run that could not be dispatched is still
		// accepted; recovery will pick it up.
		if run != nil {
			shared.RespondWithJSON(w, http.StatusAccepted, run)
			return
		}
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusAccepted, run)
}

// GetSimulation handles GET /simulations/{id}.
func (h *SimulationHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	userID, runID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	run, err := h.simulationService.GetRun(r.Context(), userID, runID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, run)
}

// ListSimulations handles GET /systems/{id}/simulations.
func (h *SimulationHandler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	userID, systemID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	runs, err := h.simulationService.ListRuns(r.Context(), userID, systemID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, runs)
}

// PreviewSimulation handles POST /simulations/preview. The model chain
// runs synchronously on the request payload and nothing is persisted.
func (h *SimulationHandler) PreviewSimulation(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input service.PreviewInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if len(input.Weather) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Weather series is required")
		return
	}

	result, err := h.simulationService.Preview(r.Context(), input)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			// Chain failures on preview input are the caller's
			// configuration problem, not a server fault.
			shared.RespondWithErrorAndLog(r.Context(), w, r,
				http.StatusUnprocessableEntity, "Simulation failed: "+err.Error(), err)
			return
		}
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, result)
}
