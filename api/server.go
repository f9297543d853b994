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
  /api/levels/*         Level management
  /api/swimmers/*       Swimmer management
  /api/exceptions/*     No-training dates
  /api/calculations/*   Monthly calculations and exports
  /api/runs             Recorded calculations
  /api/scenarios/*      Demo scenarios
  /api/health           Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Level routes
		r.Route("/levels", func(r chi.Router) {
			r.Get("/", h.ListLevels)
			r.Post("/", h.CreateLevel)
			r.Get("/{name}", h.GetLevel)
			r.Delete("/{name}", h.DeleteLevel)
		})

		// Swimmer routes
		r.Route("/swimmers", func(r chi.Router) {
			r.Get("/", h.ListSwimmers)
			r.Post("/", h.CreateSwimmer)
			r.Put("/training-days", h.SetTrainingDays)
			r.Get("/{id}", h.GetSwimmer)
			r.Delete("/{id}", h.DeleteSwimmer)
		})

		// Exception routes
		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/{month}", h.GetException)
			r.Put("/{month}", h.PutException)
		})

		// Calculation routes
		r.Route("/calculations", func(r chi.Router) {
			r.Post("/batch", h.CalculateBatch)
			r.Post("/{month}", h.Calculate)
			r.Get("/{month}/export.csv", h.ExportCSV)
			r.Get("/{month}/export.xlsx", h.ExportXLSX)
			r.Get("/{month}/chart", h.Chart)
		})
		r.Get("/runs", h.ListRuns)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Tuition Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Tuition Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/levels">/api/levels</a> - List levels</li>
<li><a href="/api/swimmers">/api/swimmers</a> - List swimmers</li>
<li><a href="/api/runs">/api/runs</a> - Recorded calculations</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
