package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/patient-portal/internal/backend"
	appconfig "github.com/wolfman30/patient-portal/internal/config"
	httpmiddleware "github.com/wolfman30/patient-portal/internal/http/middleware"
	"github.com/wolfman30/patient-portal/internal/observability/metrics"
	"github.com/wolfman30/patient-portal/internal/portal"
	"github.com/wolfman30/patient-portal/internal/session"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// BuildPortalHandler wires the backend client, page service and views.
func BuildPortalHandler(cfg *appconfig.Config, store session.Store, m *metrics.PortalMetrics, logger *logging.Logger) (*portal.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := cfg.LoadLocation()
	if err != nil {
		logger.Warn("display timezone unavailable, using UTC", "timezone", cfg.DisplayTimezone, "error", err)
	}

	client := backend.NewClient(cfg.BackendOrigin, logger.With("component", "backend"),
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithMetrics(m),
	)
	svc := portal.NewService(portal.Config{
		Sessions: session.NewManager(store),
		Backend:  client,
		Pages: portal.Pages{
			Login:          cfg.PageURL(cfg.LoginPage),
			NewAppointment: cfg.PageURL(cfg.NewAppointmentPage),
			Reschedule:     cfg.PageURL(cfg.ReschedulePage),
		},
		Cutoff:   cfg.RescheduleCutoff,
		Location: loc,
		Logger:   logger.With("component", "portal"),
		Metrics:  m,
	})
	views, err := portal.NewViews()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	cookie := portal.CookieConfig{
		Name:   portal.DefaultCookieName,
		Secure: cfg.SessionCookieSecure,
		MaxAge: cfg.SessionTTL,
	}
	return portal.NewHandler(svc, views, cookie, logger), nil
}

// BuildRateLimiter returns nil when RATE_LIMIT_RPS is not positive.
func BuildRateLimiter(cfg *appconfig.Config) *httpmiddleware.RateLimiter {
	if cfg == nil || cfg.RateLimitRPS <= 0 {
		return nil
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, burst)
}

// RunRateLimiterJanitor evicts idle per-IP limiters until ctx is done.
func RunRateLimiterJanitor(ctx context.Context, rl *httpmiddleware.RateLimiter, every, idle time.Duration, logger *logging.Logger) {
	if rl == nil {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Evict(idle); n > 0 {
				logger.Debug("rate limiter evicted idle clients", "count", n)
			}
		}
	}
}
