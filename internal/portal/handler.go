package portal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/patient-portal/internal/appointments"
	"github.com/wolfman30/patient-portal/internal/backend"
	"github.com/wolfman30/patient-portal/internal/session"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// DefaultCookieName is the session cookie set by the login handoff.
const DefaultCookieName = "portal_sid"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	// MaxAge of zero makes it a browser-session cookie.
	MaxAge time.Duration
}

// Handler serves the schedule page and its JSON companions.
type Handler struct {
	svc    *Service
	views  *Views
	cookie CookieConfig
	logger *logging.Logger
}

type loginRequiredView struct {
	Message  string
	LoginURL string
}

type errorView struct {
	Message string
}

// NewHandler creates the portal HTTP handler.
func NewHandler(svc *Service, views *Views, cookie CookieConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handler{svc: svc, views: views, cookie: cookie, logger: logger}
}

// RegisterRoutes mounts the page and API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(SchedulePath, h.schedule)
	r.Post(SchedulePath+"/{appointmentID}/cancelar", h.cancel)
	r.Post(SchedulePath+"/{appointmentID}/reagendar", h.reschedule)
	r.Post(LogoutPath, h.logout)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessao", h.startSession)
		r.Get("/reagendamento", h.pendingReschedule)
		r.Get("/horarios", h.listAppointments)
	})
}

func (h *Handler) sessionID(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Load(r.Context(), h.sessionID(r))
	if err != nil {
		h.logger.Error("portal handler: load schedule", "error", err)
		h.render(w, http.StatusInternalServerError, viewError, errorView{Message: MsgConnection})
		return
	}
	if page.Outcome == OutcomeLoginRequired {
		h.loginRequired(w)
		return
	}
	if sid := h.sessionID(r); sid != "" && h.cookie.MaxAge > 0 {
		// Keep the cookie alive as long as the stored records.
		h.setCookie(w, sid)
	}
	h.render(w, http.StatusOK, viewSchedule, page)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "appointmentID")
	res, err := h.svc.Cancel(r.Context(), h.sessionID(r), id, ParseDecision(r.PostFormValue(ConfirmField)))
	h.finish(w, r, res, err)
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := RescheduleRequest{
		AppointmentID: chi.URLParam(r, "appointmentID"),
		Date:          r.PostFormValue(FieldDate),
		Time:          r.PostFormValue(FieldTime),
		PatientName:   r.PostFormValue(FieldPatient),
	}
	res, err := h.svc.Reschedule(r.Context(), h.sessionID(r), req, ParseDecision(r.PostFormValue(ConfirmField)))
	h.finish(w, r, res, err)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Logout(r.Context(), h.sessionID(r), ParseDecision(r.PostFormValue(ConfirmField)))
	h.finish(w, r, res, err)
}

// finish turns a flow Result into a response.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, res Result, err error) {
	switch {
	case err != nil:
		h.logger.Error("portal handler: action", "path", r.URL.Path, "error", err)
		h.render(w, http.StatusInternalServerError, viewError, errorView{Message: MsgConnection})
	case res.LoginRequired:
		h.loginRequired(w)
	case res.Confirm != nil:
		h.render(w, http.StatusOK, viewConfirm, res.Confirm)
	default:
		if res.EndSession {
			h.clearCookie(w)
		}
		http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
	}
}

func (h *Handler) loginRequired(w http.ResponseWriter) {
	h.render(w, http.StatusUnauthorized, viewLoginRequired, loginRequiredView{
		Message:  MsgLoginRequired,
		LoginURL: h.svc.Pages().Login,
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	if err := h.views.Render(w, status, name, data); err != nil {
		h.logger.Error("portal handler: render", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var user session.User
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&user); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	sid, err := h.svc.StartSession(r.Context(), user)
	if err != nil {
		h.logger.Error("portal handler: start session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.setCookie(w, sid)
	writeJSON(w, http.StatusCreated, map[string]any{"redirect": SchedulePath})
}

func (h *Handler) pendingReschedule(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.PendingReschedule(r.Context(), h.sessionID(r))
	switch {
	case errors.Is(err, ErrLoginRequired):
		writeJSONError(w, http.StatusUnauthorized, MsgLoginRequired)
	case errors.Is(err, session.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "nenhum reagendamento pendente")
	case err != nil:
		h.logger.Error("portal handler: pending reschedule", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, draft)
	}
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Appointments(r.Context(), h.sessionID(r))
	var statusErr *backend.StatusError
	switch {
	case err == nil:
		if list == nil {
			list = []appointments.Appointment{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"agendamentos": list, "count": len(list)})
	case errors.Is(err, ErrLoginRequired):
		writeJSONError(w, http.StatusUnauthorized, MsgLoginRequired)
	case errors.Is(err, ErrMissingPatientID):
		writeJSONError(w, http.StatusBadRequest, MsgMissingUserID)
	case errors.As(err, &statusErr):
		writeJSONError(w, http.StatusBadGateway, statusErr.Error())
	case errors.Is(err, backend.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, MsgConnection)
	default:
		h.logger.Error("portal handler: list appointments", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) setCookie(w http.ResponseWriter, sid string) {
	c := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookie.MaxAge > 0 {
		c.MaxAge = int(h.cookie.MaxAge / time.Second)
	}
	http.SetCookie(w, c)
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
