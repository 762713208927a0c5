/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for clients

SECURITY NOTE:
  No authentication middleware; the user ID in the path is trusted.
  Ownership of work rules is still verified against that ID on every
  mutation.

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{id}", func(r chi.Router) {
			// Report routes
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", h.ListReports)
				r.Post("/", h.GenerateReport)
				r.Route("/{period}", func(r chi.Router) {
					r.Get("/", h.GetReport)
					r.Put("/", h.RegenerateReport)
					r.Delete("/", h.DeleteReport)
					r.Post("/submit", h.SubmitReport)
					r.Post("/approve", h.ApproveReport)
					r.Patch("/details", h.AnnotateDetail)
				})
			})

			// Work rule routes
			r.Route("/rules", func(r chi.Router) {
				r.Get("/", h.ListRules)
				r.Post("/", h.RegisterRule)
				r.Put("/{ruleID}", h.UpdateRule)
				r.Delete("/{ruleID}", h.DeleteRule)
			})

			// Ping and settings routes
			r.Post("/pings", h.RecordPing)
			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.PutSettings)
		})
	})

	return r
}
