package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/patient-portal/internal/http/middleware"
	"github.com/wolfman30/patient-portal/internal/portal"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Portal             *portal.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(app chi.Router) {
		if cfg.RateLimiter != nil {
			app.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		app.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, portal.SchedulePath, http.StatusFound)
		})
		if cfg.Portal != nil {
			cfg.Portal.RegisterRoutes(app)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
