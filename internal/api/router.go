package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/zones", func(r chi.Router) {
				r.Get("/", s.handleListZones)
				r.Get("/{area}/patterns", s.handleZonePatterns)
				r.Get("/{area}/towns", s.handleZoneTowns)
			})

			r.Get("/me", s.handleMe)
			r.Patch("/me", s.handleUpdateMe)

			r.Route("/onus", func(r chi.Router) {
				r.Get("/", s.handleListOnus)
				r.Get("/counts", s.handleOnuCounts)
				r.Get("/locations", s.handleOnuLocations)
				r.Get("/{sn}", s.handleGetOnu)
			})

			r.Get("/sync", s.handleSyncStatus)

			r.Group(func(r chi.Router) {
				r.Use(s.adminOnly)

				r.Post("/sync", s.handleSync)
				r.Get("/audit", s.handleListAuditLogs)

				r.Route("/technicians", func(r chi.Router) {
					r.Get("/", s.handleListTechnicians)
					r.Post("/", s.handleCreateTechnician)
					r.Put("/{id}/area", s.handleUpdateTechnicianArea)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"onus":    s.registry.Count(),
	})
}
