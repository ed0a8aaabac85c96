package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obraguard/obraguard/internal/api/alerts"
	"github.com/obraguard/obraguard/internal/api/configs"
	"github.com/obraguard/obraguard/internal/api/engine"
	"github.com/obraguard/obraguard/internal/api/middleware"
	"github.com/obraguard/obraguard/internal/notifier"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Identity)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Engine routes
		r.Route("/engine", func(r chi.Router) {
			engineHandler := engine.NewHandler(s.evaluator, s.dispatcher, notifier.TestWebhook)

			r.Post("/evaluate", engineHandler.Evaluate)
			r.Post("/dispatch", engineHandler.Dispatch)
			r.Post("/test-webhook", engineHandler.TestWebhook)
		})

		// Alert routes
		r.Route("/alerts", func(r chi.Router) {
			alertHandler := alerts.NewHandler(s.storage)

			r.Get("/", alertHandler.List)
			r.Get("/stats", alertHandler.Stats)
			r.Post("/purge", alertHandler.Purge)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", alertHandler.GetByID)
				r.Get("/history", alertHandler.History)
				r.Get("/notifications", alertHandler.Notifications)
				r.Post("/resolve", alertHandler.Resolve)
				r.Post("/ignore", alertHandler.Ignore)
				r.Post("/reactivate", alertHandler.Reactivate)
				r.Post("/visualize", alertHandler.Visualize)
				r.Post("/read", alertHandler.Read)
			})
		})

		// Alert configuration routes
		r.Route("/projects/{projectID}/alert-config", func(r chi.Router) {
			configHandler := configs.NewHandler(s.storage)

			r.Get("/", configHandler.Get)
			r.Put("/", configHandler.Save)
			r.Delete("/", configHandler.Deactivate)
		})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Health check (public, no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		OK(w, map[string]string{"status": "ok"})
	})

	return r
}
