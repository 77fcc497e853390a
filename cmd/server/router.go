package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pvgrid/helioserve/internal/api"
	apiMiddleware "github.com/pvgrid/helioserve/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth)
	siteHandler := api.NewSiteHandler(app.siteService)
	systemHandler := api.NewSystemHandler(app.systemService)
	simulationHandler := api.NewSimulationHandler(app.simulationService)
	solarHandler := api.NewSolarHandler()
	paramsHandler := api.NewParamsHandler(app.catalog)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Solar geometry and parameter lookups (public)
		r.Get("/solar/position", solarHandler.GetPosition)
		r.Get("/solar/clearsky", solarHandler.GetClearSky)
		r.Get("/parameters/modules", paramsHandler.ListModules)
		r.Get("/parameters/modules/{name}", paramsHandler.GetModule)
		r.Get("/parameters/inverters", paramsHandler.ListInverters)
		r.Get("/parameters/inverters/{name}", paramsHandler.GetInverter)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/sites", siteHandler.CreateSite)
			r.Get("/sites", siteHandler.ListSites)
			r.Get("/sites/{id}", siteHandler.GetSite)
			r.Put("/sites/{id}", siteHandler.UpdateSite)
			r.Delete("/sites/{id}", siteHandler.DeleteSite)
			r.Get("/sites/{id}/systems", systemHandler.ListSystems)

			r.Post("/systems", systemHandler.CreateSystem)
			r.Get("/systems/{id}", systemHandler.GetSystem)
			r.Put("/systems/{id}", systemHandler.UpdateSystem)
			r.Delete("/systems/{id}", systemHandler.DeleteSystem)
			r.Get("/systems/{id}/simulations", simulationHandler.ListSimulations)

			r.Post("/simulations", simulationHandler.CreateSimulation)
			r.Get("/simulations/{id}", simulationHandler.GetSimulation)
			r.Post("/simulations/preview", simulationHandler.PreviewSimulation)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
