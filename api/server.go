/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the SPA frontend

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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Officer routes
		r.Route("/officers", func(r chi.Router) {
			r.Get("/", h.ListOfficers)
			r.Post("/", h.CreateOfficer)
			r.Get("/{id}", h.GetOfficer)
			r.Put("/{id}", h.ReplaceOfficer)
			r.Delete("/{id}", h.DeleteOfficer)
			r.Get("/{id}/records", h.ListOfficerRecords)
			r.Get("/{id}/descriptions", h.ListDescriptions)
			r.Get("/{id}/report", h.GetOfficerReport)
		})

		// Leave record routes
		r.Route("/records", func(r chi.Router) {
			r.Post("/", h.CreateRecord)
			r.Post("/{id}/redeem", h.RedeemRecord)
			r.Delete("/{id}", h.DeleteRecord)
		})

		// Aggregation and metadata
		r.Get("/summary", h.GetSummary)
		r.Get("/meta", h.GetMeta)
	})

	return r
}
