package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/patient-portal/internal/session"
)

const (
	MsgRescheduleQuestion = "Tem certeza que deseja reagendar esta sessão?"
	MsgUnknownSessionTime = "Não foi possível identificar a data da sessão."
)

// RescheduleRequest is the data each reschedule button carries.
type RescheduleRequest struct {
	AppointmentID string
	Date          string
	Time          string
	PatientName   string
}

// Form field names for RescheduleRequest.
const (
	FieldDate    = "data"
	FieldTime    = "horario"
	FieldPatient = "paciente"
)

// Fields returns the request as hidden form fields.
func (r RescheduleRequest) Fields() []Field {
	return []Field{
		{Name: FieldDate, Value: r.Date},
		{Name: FieldTime, Value: r.Time},
		{Name: FieldPatient, Value: r.PatientName},
	}
}

// ReschedulePath is the form action for rescheduling an appointment.
func ReschedulePath(appointmentID string) string {
	return SchedulePath + "/" + url.PathEscape(appointmentID) + "/reagendar"
}

var sessionStartLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// SessionStart combines the appointment date and start time in loc. Only the
// part of date before any "T" is used.
func SessionStart(date, clock string, loc *time.Location) (time.Time, error) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(date), "T")
	value := datePart + "T" + strings.TrimSpace(clock)
	for _, layout := range sessionStartLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("portal: unreadable session start %q", value)
}

// CutoffMessage is the policy notice shown when rescheduling is too late.
func CutoffMessage(cutoff time.Duration) string {
	hours := int(cutoff / time.Hour)
	unit := "horas"
	if hours == 1 {
		unit = "hora"
	}
	return fmt.Sprintf("Reagendamento permitido somente até %d %s antes da sessão.", hours, unit)
}

// Reschedule hands an appointment over to the reschedule page once the user
// confirms and the session starts no earlier than now plus the cutoff.
func (s *Service) Reschedule(ctx context.Context, sid string, req RescheduleRequest, decision Decision) (Result, error) {
	if _, err := s.sessions.User(ctx, sid); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{LoginRequired: true}, nil
		}
		return Result{}, fmt.Errorf("portal: reschedule: load session: %w", err)
	}

	switch decision {
	case DecisionAsk:
		return Result{Confirm: &Confirmation{
			Title:    "Reagendar sessão",
			Question: MsgRescheduleQuestion,
			Action:   ReschedulePath(req.AppointmentID),
			Fields:   req.Fields(),
			Back:     SchedulePath,
		}}, nil
	case DecisionDeclined:
		s.metrics.ObserveAction("reschedule", "declined")
		return Result{Redirect: SchedulePath}, nil
	}

	start, err := SessionStart(req.Date, req.Time, s.location)
	if err != nil {
		s.logger.Warn("portal: reschedule", "appointment_id", req.AppointmentID, "error", err)
		s.notify(ctx, sid, session.NoticeWarning, MsgUnknownSessionTime)
		s.metrics.ObserveAction("reschedule", "invalid_time")
		return Result{Redirect: SchedulePath}, nil
	}

	limit := s.now().Add(s.cutoff)
	if start.Before(limit) {
		s.notify(ctx, sid, session.NoticeWarning, CutoffMessage(s.cutoff))
		s.metrics.ObserveAction("reschedule", "cutoff")
		return Result{Redirect: SchedulePath}, nil
	}

	draft := session.Draft{
		AppointmentID: req.AppointmentID,
		Date:          req.Date,
		Time:          req.Time,
		PatientName:   req.PatientName,
	}
	if err := s.sessions.SaveDraft(ctx, sid, draft); err != nil {
		return Result{}, fmt.Errorf("portal: reschedule: save draft: %w", err)
	}
	s.metrics.ObserveAction("reschedule", "handed_off")
	return Result{Redirect: s.pages.Reschedule}, nil
}
