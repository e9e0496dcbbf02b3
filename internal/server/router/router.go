// Package router собирает HTTP API сервера на chi.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/clinicsync/internal/metrics"
	"github.com/iudanet/clinicsync/internal/server/handlers"
	"github.com/iudanet/clinicsync/internal/server/middleware"
)

const healthPath = "/api/v1/health"

// Config зависимости роутера
type Config struct {
	Logger        *slog.Logger
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Patients      *handlers.PatientHandler
	Consultations *handlers.ConsultationHandler
	Guides        *handlers.GuideHandler
	Messages      *handlers.MessageHandler
	HTTPMetrics   *metrics.HTTPMetrics
	// AuthLimiter ограничивает публичные auth маршруты, nil отключает лимит
	AuthLimiter *middleware.RateLimiter
	// MetricsHandler отдает /metrics, nil отключает маршрут
	MetricsHandler http.Handler
	JWT            handlers.JWTConfig
}

// New создает chi роутер со всеми маршрутами API
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.HTTPMetrics, healthPath))

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", cfg.Health.Health)

		api.Route("/auth", func(auth chi.Router) {
			if cfg.AuthLimiter != nil {
				auth.Use(cfg.AuthLimiter.Middleware)
			}
			auth.Post("/register", cfg.Auth.Register)
			auth.Get("/salt/{username}", cfg.Auth.GetSalt)
			auth.Post("/login", cfg.Auth.Login)
			auth.Post("/refresh", cfg.Auth.Refresh)
			auth.Post("/logout", cfg.Auth.Logout)
		})

		api.Group(func(private chi.Router) {
			private.Use(middleware.Auth(cfg.Logger, cfg.JWT))

			private.Route("/patients", func(p chi.Router) {
				p.Get("/", cfg.Patients.Lookup)
				p.Post("/register", cfg.Patients.Register)
				p.Patch("/{id}", cfg.Patients.Update)
			})

			private.Route("/consultations", func(c chi.Router) {
				c.Get("/", cfg.Consultations.List)
				c.Post("/", cfg.Consultations.Create)
				c.Get("/{id}", cfg.Consultations.Get)
				c.Patch("/{id}", cfg.Consultations.Update)
			})

			private.Get("/guides", cfg.Guides.List)
			private.Post("/guides", cfg.Guides.Create)
			private.Post("/messages", cfg.Messages.Send)
		})
	})

	return r
}
