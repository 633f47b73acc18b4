package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Device capabilities
			r.Get("/device", s.handleGetDevice)

			// Group lifecycle
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetGroup)
					r.Delete("/", s.handleDestroyGroup)
					r.Post("/handle", s.handleOpenHandle)
					r.Get("/runtime", s.handleGroupRuntime)
				})
			})
			r.Delete("/handles/{handle}", s.handleCloseHandle)

			// Parameter pipeline
			r.Put("/params", s.handleSetParam)
			r.Get("/params", s.handleGetParam)

			// Audit trail
			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status and the state of each
// optional backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"version": s.version,
		"device":  s.devCfg.ID,
		"groups":  s.groups.Count(),
	}
	if s.registry != nil {
		health["records"] = s.registry.Count()
	}
	if s.db != nil {
		status := "ok"
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = err.Error()
		}
		health["database"] = status
	}
	if s.mqtt != nil {
		health["mqtt_connected"] = s.mqtt.IsConnected()
	}
	if s.tsdb != nil {
		health["tsdb_connected"] = s.tsdb.IsConnected()
	}

	writeJSON(w, http.StatusOK, health)
}

// handleGetDevice returns the device identity and the parameter windows
// it advertises, so tooling can validate values client-side.
func (s *Server) handleGetDevice(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                  s.devCfg.ID,
		"name":                s.devCfg.Name,
		"priority_min":        s.caps.PriorityMin,
		"priority_max":        s.caps.PriorityMax,
		"min_priority_offset": s.caps.MinPriorityOffset(),
		"max_priority_offset": s.caps.MaxPriorityOffset(),
		"max_display_boost":   s.caps.MaxDisplayBoost,
	})
}
