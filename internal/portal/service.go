// Package portal implements the patient schedule page: loading the logged-in
// patient's appointments, rendering them and the cancel/reschedule/logout flows.
package portal

import (
	"context"
	"time"

	"github.com/wolfman30/patient-portal/internal/appointments"
	"github.com/wolfman30/patient-portal/internal/observability/metrics"
	"github.com/wolfman30/patient-portal/internal/session"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// SchedulePath is where the schedule page is served.
const SchedulePath = "/horarios"

// Backend is the subset of the clinic backend the page needs.
type Backend interface {
	ListByPatient(ctx context.Context, patientID string) ([]appointments.Appointment, error)
	Cancel(ctx context.Context, appointmentID, patientID string) error
}

// Pages are navigation targets served by other parts of the clinic site.
type Pages struct {
	Login          string
	NewAppointment string
	Reschedule     string
}

// Config wires a Service.
type Config struct {
	Sessions *session.Manager
	Backend  Backend
	Pages    Pages
	// Cutoff is how long before the session start rescheduling closes.
	Cutoff   time.Duration
	Location *time.Location
	Now      func() time.Time
	Logger   *logging.Logger
	Metrics  *metrics.PortalMetrics
}

// Service runs the page flows. It holds no per-user state.
type Service struct {
	sessions  *session.Manager
	backend   Backend
	pages     Pages
	cutoff    time.Duration
	location  *time.Location
	formatter appointments.Formatter
	now       func() time.Time
	logger    *logging.Logger
	metrics   *metrics.PortalMetrics
}

// NewService builds a Service, filling defaults for optional fields.
func NewService(cfg Config) *Service {
	if cfg.Sessions == nil {
		panic("portal: session manager cannot be nil")
	}
	if cfg.Backend == nil {
		panic("portal: backend cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cutoff <= 0 {
		cfg.Cutoff = 12 * time.Hour
	}
	if cfg.Pages.Login == "" {
		cfg.Pages.Login = "/login.html"
	}
	if cfg.Pages.NewAppointment == "" {
		cfg.Pages.NewAppointment = "/agendarHorario.html"
	}
	if cfg.Pages.Reschedule == "" {
		cfg.Pages.Reschedule = "/reagendarHorario.html"
	}
	return &Service{
		sessions:  cfg.Sessions,
		backend:   cfg.Backend,
		pages:     cfg.Pages,
		cutoff:    cfg.Cutoff,
		location:  cfg.Location,
		formatter: appointments.NewFormatter(cfg.Location),
		now:       cfg.Now,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Pages returns the configured navigation targets.
func (s *Service) Pages() Pages {
	return s.pages
}

// notify queues a notice; failures only lose the message, so they are logged.
func (s *Service) notify(ctx context.Context, sid string, kind session.NoticeKind, text string) {
	if err := s.sessions.PushNotice(ctx, sid, session.Notice{Kind: kind, Text: text}); err != nil {
		s.logger.Error("portal: store notice", "error", err)
	}
}
