// Package router wires the HTTP surface: the parse endpoint, health, and
// metrics, behind the standard middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/appointment-parser/internal/appointment"
	httpmiddleware "github.com/wolfman30/appointment-parser/internal/http/middleware"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	AppointmentHandler *appointment.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.AppointmentHandler.HealthCheck)
	r.Post("/parse-appointment", cfg.AppointmentHandler.ParseAppointment)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
