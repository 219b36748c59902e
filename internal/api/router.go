/**
 * @description
 * This file sets up the HTTP router for the registration service using go-chi/chi.
 * It applies logging, recovery, timeout and CORS middleware, exposes health and
 * Prometheus endpoints, and maps the plan, wizard and page routes to their handlers.
 */
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new Chi router and registers the registration service routes.
// Without allowed origins the API is same-origin only. Credentials are never shared
// with a wildcard origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: !allowsAnyOrigin(allowedOrigins),
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Registration service is healthy"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Server-rendered wizard
	r.Get("/", h.handlePage)
	r.Post("/", h.handlePageAction)
	r.Post("/toasts/{toastID}/dismiss", h.handlePageDismissToast)

	r.Route("/api", func(r chi.Router) {
		r.Get("/plans", h.handleListPlans)
		r.Get("/plans/{planID}", h.handleGetPlan)

		r.Post("/wizard/sessions", h.handleCreateSession)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Get("/wizard", h.handleGetWizard)
			r.Delete("/wizard", h.handleEndSession)
			r.Get("/wizard/view", h.handleGetView)
			r.Post("/wizard/fields", h.handleUpdateFields)
			r.Post("/wizard/next", h.handleNext)
			r.Post("/wizard/previous", h.handlePrevious)
			r.With(h.SubmitRateLimit).Post("/wizard/submit", h.handleSubmit)
			r.Delete("/wizard/toasts/{toastID}", h.handleDismissToast)
		})
	})

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		switch strings.TrimSpace(o) {
		case "*", "http://*", "https://*":
			return true
		}
	}
	return false
}
