package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/patient-portal/internal/backend"
	"github.com/wolfman30/patient-portal/internal/session"
)

// Outcome classifies how a page load ended.
type Outcome int

const (
	OutcomeList Outcome = iota
	OutcomeLoginRequired
	OutcomeInlineError
)

// User-facing page messages.
const (
	MsgLoginRequired  = "Você precisa estar logado para acessar esta página."
	MsgMissingUserID  = "Erro: ID do usuário não encontrado"
	MsgConnection     = "Erro de conexão com o servidor"
	msgLoadStatusTmpl = "Erro ao carregar agendamentos (status %d). Tente novamente."
)

// SchedulePage is everything the schedule template needs.
type SchedulePage struct {
	Outcome           Outcome
	Greeting          string
	Notice            *session.Notice
	Error             string
	Cards             []Card
	NewAppointmentURL string
	LoginURL          string
}

// Empty reports whether the list loaded with no appointments.
func (p *SchedulePage) Empty() bool {
	return p.Outcome == OutcomeList && len(p.Cards) == 0
}

// Load reads the session and fetches the patient's appointments. Backend
// failures become inline page errors; only session storage failures are
// returned as errors.
func (s *Service) Load(ctx context.Context, sid string) (*SchedulePage, error) {
	page := &SchedulePage{
		NewAppointmentURL: s.pages.NewAppointment,
		LoginURL:          s.pages.Login,
	}

	user, err := s.sessions.User(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		page.Outcome = OutcomeLoginRequired
		page.Error = MsgLoginRequired
		s.metrics.ObserveAction("load", "login_required")
		return page, nil
	}
	if errors.Is(err, session.ErrCorrupt) {
		s.logger.Error("portal: unreadable session user", "error", err)
		page.Outcome = OutcomeInlineError
		page.Greeting = "Olá, Usuário"
		page.Error = MsgMissingUserID
		s.metrics.ObserveAction("load", "missing_id")
		return page, nil
	}
	if err != nil {
		return nil, fmt.Errorf("portal: load session: %w", err)
	}

	page.Greeting = "Olá, " + user.DisplayName()
	if notice, err := s.sessions.PopNotice(ctx, sid); err != nil {
		s.logger.Warn("portal: read notice", "error", err)
	} else {
		page.Notice = notice
	}

	if !user.HasID() {
		s.logger.Error("portal: session without patient id")
		page.Outcome = OutcomeInlineError
		page.Error = MsgMissingUserID
		s.metrics.ObserveAction("load", "missing_id")
		return page, nil
	}

	s.logger.Debug("portal: loading appointments", "patient_id", user.ID)
	list, err := s.backend.ListByPatient(ctx, user.ID)
	if err != nil {
		page.Outcome = OutcomeInlineError
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Error("portal: load appointments", "patient_id", user.ID, "status", statusErr.StatusCode)
			page.Error = fmt.Sprintf(msgLoadStatusTmpl, statusErr.StatusCode)
			s.metrics.ObserveAction("load", "backend_status")
			return page, nil
		}
		s.logger.Error("portal: load appointments", "patient_id", user.ID, "error", err)
		page.Error = MsgConnection
		s.metrics.ObserveAction("load", "backend_unavailable")
		return page, nil
	}

	page.Outcome = OutcomeList
	page.Cards = BuildCards(list, user, s.formatter)
	s.metrics.ObserveAction("load", "ok")
	return page, nil
}
