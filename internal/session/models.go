// Package session keeps the per-browser records the schedule page works with:
// the logged-in patient, the reschedule handoff draft and pending notices.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Logical record keys, named after the browser storage entries the other
// pages of the clinic site already use.
const (
	KeyUser   = "usuarioLogado"
	KeyDraft  = "reagendamento"
	KeyNotice = "aviso"
)

// LegacyKeys are older per-field copies of the user record, cleared on logout.
var LegacyKeys = []string{"userId", "usuCodigo", "userNome", "userType"}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("session: record not found")

// ErrCorrupt is returned when a stored record cannot be decoded.
var ErrCorrupt = errors.New("session: corrupt record")

// User is the logged-in patient record written by the login page.
type User struct {
	ID    string `json:"usucodigo"`
	Name  string `json:"usunome"`
	Phone string `json:"telefone,omitempty"`
	Email string `json:"usuemail,omitempty"`
}

// UnmarshalJSON accepts usucodigo as either a number or a string.
func (u *User) UnmarshalJSON(data []byte) error {
	var w struct {
		ID    json.RawMessage `json:"usucodigo"`
		Name  string          `json:"usunome"`
		Phone string          `json:"telefone"`
		Email string          `json:"usuemail"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := scalarText(w.ID)
	if err != nil {
		return err
	}
	*u = User{ID: id, Name: w.Name, Phone: w.Phone, Email: w.Email}
	return nil
}

// DisplayName is the greeting name, "Usuário" when the record has none.
func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return "Usuário"
	}
	return u.Name
}

// HasID reports whether the record identifies a patient.
func (u *User) HasID() bool {
	return u != nil && strings.TrimSpace(u.ID) != ""
}

// Draft is the handoff payload read by the reschedule page.
type Draft struct {
	AppointmentID string `json:"agendamentoID"`
	Date          string `json:"data"`
	Time          string `json:"horario"`
	PatientName   string `json:"paciente"`
}

// NoticeKind classifies a notice for styling.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
)

// Notice is a one-shot message shown on the next page render.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return "", errors.New("session: usucodigo must be a scalar")
	}
	return string(trimmed), nil
}
