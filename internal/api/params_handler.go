package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/paramdb"
)

// ParamsHandler serves the module and inverter coefficient databases.
type ParamsHandler struct {
	catalog *paramdb.Catalog
}

// NewParamsHandler creates a new ParamsHandler with the given catalog.
// A nil catalog serves empty listings.
func NewParamsHandler(catalog *paramdb.Catalog) *ParamsHandler {
	return &ParamsHandler{catalog: catalog}
}

func (h *ParamsHandler) moduleDB() *paramdb.Database {
	if h.catalog == nil {
		return nil
	}
	return h.catalog.Modules
}

func (h *ParamsHandler) inverterDB() *paramdb.Database {
	if h.catalog == nil {
		return nil
	}
	return h.catalog.Inverters
}

func listDatabase(w http.ResponseWriter, r *http.Request, db *paramdb.Database) {
	resp := ParameterListResponse{Names: []string{}}
	if db != nil {
		resp.Names = db.Names()
		resp.Count = db.Len()
	}
	shared.RespondWithJSON(w, http.StatusOK, resp)
}

func getDatabaseEntry(w http.ResponseWriter, r *http.Request, db *paramdb.Database, kind string) {
	name := chi.URLParam(r, "name")
	if name == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "missing name parameter")
		return
	}

	if db == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, kind+" not found")
		return
	}
	params, err := db.Get(name)
	if err != nil {
		if errors.Is(err, paramdb.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, kind+" not found")
			return
		}
		shared.RespondWithErrorAndLog(r.Context(), w, r,
			http.StatusInternalServerError, "Failed to load "+kind, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, ParameterEntryResponse{
		Name:       paramdb.SanitizeName(name),
		Parameters: params,
	})
}

// ListModules handles GET /parameters/modules.
func (h *ParamsHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	listDatabase(w, r, h.moduleDB())
}

// GetModule handles GET /parameters/modules/{name}.
func (h *ParamsHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	getDatabaseEntry(w, r, h.moduleDB(), "module")
}

// ListInverters handles GET /parameters/inverters.
func (h *ParamsHandler) ListInverters(w http.ResponseWriter, r *http.Request) {
	listDatabase(w, r, h.inverterDB())
}

// GetInverter handles GET /parameters/inverters/{name}.
func (h *ParamsHandler) GetInverter(w http.ResponseWriter, r *http.Request) {
	getDatabaseEntry(w, r, h.inverterDB(), "inverter")
}
