package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/patient-portal/internal/appointments"
	"github.com/wolfman30/patient-portal/internal/session"
)

var (
	// ErrLoginRequired means the session has no logged-in user.
	ErrLoginRequired = errors.New("portal: login required")
	// ErrMissingPatientID means the stored user record has no id.
	ErrMissingPatientID = errors.New("portal: session user has no id")
)

// StartSession stores the user handed over by the login page under a new
// session id and returns it. A record without an id is still stored; the
// schedule page reports it.
func (s *Service) StartSession(ctx context.Context, user session.User) (string, error) {
	sid := session.NewID()
	if err := s.sessions.SaveUser(ctx, sid, user); err != nil {
		return "", fmt.Errorf("portal: start session: %w", err)
	}
	s.logger.Info("portal: session started", "patient_id", user.ID)
	s.metrics.ObserveAction("login", "ok")
	return sid, nil
}

// PendingReschedule returns the draft saved by the last accepted reschedule.
// It returns session.ErrNotFound when there is none.
func (s *Service) PendingReschedule(ctx context.Context, sid string) (*session.Draft, error) {
	if _, err := s.sessions.User(ctx, sid); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrLoginRequired
		}
		return nil, fmt.Errorf("portal: pending reschedule: %w", err)
	}
	return s.sessions.Draft(ctx, sid)
}

// Appointments returns the patient's normalized appointments. Backend errors
// are passed through so callers can inspect *backend.StatusError.
func (s *Service) Appointments(ctx context.Context, sid string) ([]appointments.Appointment, error) {
	user, err := s.sessions.User(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrLoginRequired
	}
	if errors.Is(err, session.ErrCorrupt) {
		return nil, ErrMissingPatientID
	}
	if err != nil {
		return nil, fmt.Errorf("portal: appointments: %w", err)
	}
	if !user.HasID() {
		return nil, ErrMissingPatientID
	}
	return s.backend.ListByPatient(ctx, user.ID)
}
