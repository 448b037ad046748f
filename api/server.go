/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/analysis/*   Attribution runs
  /api/config       Workspace overtime configuration
  /api/profiles/*   Member profiles
  /api/overrides/*  Per-user schedule overrides
  /api/holidays     Holiday calendar
  /api/timeoff      Time-off calendar
  /api/scenarios/*  Demo scenarios
  /api/health       Liveness probe
  /api/reset        Workspace reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Attribution runs
		r.Route("/analysis", func(r chi.Router) {
			r.Post("/", h.RunAnalysis)
			r.Post("/run", h.RunStoredAnalysis)
		})

		// Workspace config
		r.Route("/config", func(r chi.Router) {
			r.Get("/", h.GetConfig)
			r.Put("/", h.PutConfig)
		})

		// Member profiles
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Get("/{userID}", h.GetProfile)
			r.Put("/{userID}", h.PutProfile)
		})

		// Schedule overrides
		r.Route("/overrides", func(r chi.Router) {
			r.Get("/{userID}", h.GetOverride)
			r.Put("/{userID}", h.PutOverride)
			r.Delete("/{userID}", h.DeleteOverride)
		})

		// Calendars
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.AddHolidays)
		})
		r.Route("/timeoff", func(r chi.Router) {
			r.Get("/", h.ListTimeOff)
			r.Post("/", h.AddTimeOff)
		})

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{id}/run", h.RunScenario)
		})

		// Ops
		r.Get("/health", h.Health)
		r.Post("/reset", h.Reset)
	})

	return r
}
