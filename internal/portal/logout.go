package portal

import (
	"context"
	"fmt"
)

const (
	LogoutPath        = "/sair"
	MsgLogoutQuestion = "Deseja realmente sair?"
)

// Logout clears every stored record for the session once confirmed.
func (s *Service) Logout(ctx context.Context, sid string, decision Decision) (Result, error) {
	switch decision {
	case DecisionAsk:
		return Result{Confirm: &Confirmation{
			Title:    "Sair",
			Question: MsgLogoutQuestion,
			Action:   LogoutPath,
			Back:     SchedulePath,
		}}, nil
	case DecisionDeclined:
		return Result{Redirect: SchedulePath}, nil
	}

	if err := s.sessions.Destroy(ctx, sid); err != nil {
		return Result{}, fmt.Errorf("portal: logout: %w", err)
	}
	s.metrics.ObserveAction("logout", "ok")
	return Result{Redirect: s.pages.Login, EndSession: true}, nil
}
