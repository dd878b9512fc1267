/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the editing frontend

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Driver-week adjustments and totals
		r.Route("/drivers/{driverID}", func(r chi.Router) {
			r.Route("/weeks/{week}", func(r chi.Router) {
				r.Get("/adjustments", h.GetAdjustments)
				r.Put("/adjustments", h.SaveAdjustments)
				r.Get("/adjustments/history", h.GetAdjustmentHistory)
				r.Get("/totals", h.GetWeekTotals)
			})
			r.Get("/summary", h.GetEmployeeSummary)
		})

		// Reversal
		r.Post("/adjustments/{id}/reverse", h.ReverseAdjustment)

		// Audit trail
		r.Get("/audit", h.GetAuditTrail)
	})

	return r
}
