package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wolfman30/patient-portal/internal/backend"
	"github.com/wolfman30/patient-portal/internal/session"
)

const (
	MsgCancelQuestion   = "Tem certeza que deseja cancelar este agendamento?"
	MsgCancelled        = "Agendamento cancelado com sucesso!"
	MsgCancelFailedPfx  = "Erro ao cancelar: "
	MsgCancelConnection = "Erro ao conectar com o servidor."
)

// CancelPath is the form action for cancelling an appointment.
func CancelPath(appointmentID string) string {
	return SchedulePath + "/" + url.PathEscape(appointmentID) + "/cancelar"
}

// Cancel deletes an appointment once the user confirms. Every outcome ends
// back on the schedule page, which reloads the list and shows the notice.
func (s *Service) Cancel(ctx context.Context, sid, appointmentID string, decision Decision) (Result, error) {
	user, err := s.sessions.User(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		return Result{LoginRequired: true}, nil
	}
	if err != nil && !errors.Is(err, session.ErrCorrupt) {
		return Result{}, fmt.Errorf("portal: cancel: load session: %w", err)
	}
	patientID := ""
	if user != nil {
		patientID = strings.TrimSpace(user.ID)
	}

	switch decision {
	case DecisionAsk:
		return Result{Confirm: &Confirmation{
			Title:    "Cancelar agendamento",
			Question: MsgCancelQuestion,
			Action:   CancelPath(appointmentID),
			Back:     SchedulePath,
		}}, nil
	case DecisionDeclined:
		s.metrics.ObserveAction("cancel", "declined")
		return Result{Redirect: SchedulePath}, nil
	}

	if patientID == "" {
		s.notify(ctx, sid, session.NoticeError, MsgMissingUserID)
		s.metrics.ObserveAction("cancel", "missing_user_id")
		return Result{Redirect: SchedulePath}, nil
	}
	if strings.TrimSpace(appointmentID) == "" {
		s.notify(ctx, sid, session.NoticeError, MsgCancelFailedPfx+"agendamento não identificado")
		return Result{Redirect: SchedulePath}, nil
	}

	if err := s.backend.Cancel(ctx, appointmentID, patientID); err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("portal: cancel rejected", "appointment_id", appointmentID, "status", statusErr.StatusCode)
			s.notify(ctx, sid, session.NoticeError, MsgCancelFailedPfx+statusErr.Body)
			s.metrics.ObserveAction("cancel", "rejected")
			return Result{Redirect: SchedulePath}, nil
		}
		s.logger.Error("portal: cancel", "appointment_id", appointmentID, "error", err)
		s.notify(ctx, sid, session.NoticeError, MsgCancelConnection)
		s.metrics.ObserveAction("cancel", "backend_unavailable")
		return Result{Redirect: SchedulePath}, nil
	}

	s.logger.Info("portal: appointment cancelled", "appointment_id", appointmentID, "patient_id", patientID)
	s.notify(ctx, sid, session.NoticeSuccess, MsgCancelled)
	s.metrics.ObserveAction("cancel", "cancelled")
	return Result{Redirect: SchedulePath}, nil
}
