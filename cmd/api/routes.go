package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-caller/internal/infra/http/handlers"
	"github.com/xavierca1/lead-caller/internal/infra/http/middleware"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

type routeHandlers struct {
	Enquiry *handlers.EnquiryHandler
	Webhook *handlers.WebhookHandler
	Leads   *handlers.LeadsHandler
	Health  *handlers.HealthHandler
}

func newRouter(h routeHandlers, allowedOrigins []string, logger *logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", handlers.HandleLanding)
	r.Post("/enquire", h.Enquiry.Handle)
	r.Post("/webhook", h.Webhook.Handle)
	r.Get("/leads", h.Leads.HandleList)
	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
