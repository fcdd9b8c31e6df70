// Package appointments holds the canonical appointment shape returned by the
// clinic backend and the display helpers used to render it.
package appointments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is shown for any field the backend did not provide.
const Placeholder = "—"

// Appointment is the canonical appointment record. The backend has shipped
// several field names for the same value over time; UnmarshalJSON folds them
// into these fields so nothing downstream has to probe aliases.
type Appointment struct {
	ID           string   `json:"id"`
	RawDate      any      `json:"date"`
	Time         string   `json:"time,omitempty"`
	StartTime    string   `json:"startTime,omitempty"`
	PatientName  string   `json:"patientName,omitempty"`
	Observations string   `json:"observations,omitempty"`
	Fee          *float64 `json:"fee"`
	FeeText      string   `json:"feeText,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
}

// contact is the nested paciente/usuario object some backend versions embed.
type contact struct {
	Name      FlexString `json:"nome"`
	UserName  FlexString `json:"usunome"`
	Phone     FlexString `json:"telefone"`
	UserEmail FlexString `json:"usuemail"`
	Email     FlexString `json:"email"`
}

type wireAppointment struct {
	AgendamentoID FlexString      `json:"agendamentoID"`
	ID            FlexString      `json:"id"`
	Data          json.RawMessage `json:"data"`
	DataSessao    json.RawMessage `json:"dataSessao"`
	HorarioData   json.RawMessage `json:"horarioData"`
	StartDate     json.RawMessage `json:"startDate"`
	Date          json.RawMessage `json:"date"`
	Horario       FlexString      `json:"horario"`
	HorarioInicio FlexString      `json:"horarioInicio"`
	Paciente      json.RawMessage `json:"paciente"`
	PacienteNome  FlexString      `json:"pacienteNome"`
	Observacoes   FlexString      `json:"observacoes"`
	ValorSessao   json.RawMessage `json:"valorSessao"`
	Telefone      FlexString      `json:"telefone"`
	Email         FlexString      `json:"email"`
	Usuario       json.RawMessage `json:"usuario"`
}

// UnmarshalJSON decodes any of the known backend shapes.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	var w wireAppointment
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("appointments: decode: %w", err)
	}

	rawDate := firstPresent(w.Data, w.DataSessao, w.HorarioData, w.StartDate, w.Date)
	fee, feeText := decodeFee(w.ValorSessao)

	patientName, patient := decodePatient(w.Paciente)
	user := decodeContact(w.Usuario)

	*a = Appointment{
		ID:           firstNonEmpty(string(w.AgendamentoID), string(w.ID)),
		RawDate:      rawDate,
		Time:         string(w.Horario),
		StartTime:    firstNonEmpty(string(w.HorarioInicio), string(w.Horario)),
		PatientName:  firstNonEmpty(patientName, string(w.PacienteNome)),
		Observations: string(w.Observacoes),
		Fee:          fee,
		FeeText:      feeText,
		Phone:        firstNonEmpty(string(w.Telefone), string(patient.Phone), string(user.Phone)),
		Email:        firstNonEmpty(string(w.Email), string(patient.UserEmail), string(user.UserEmail)),
	}
	return nil
}

// DateString returns the raw date when the backend sent it as a string.
func (a Appointment) DateString() string {
	s, _ := a.RawDate.(string)
	return s
}

// FeeLabel renders the fee, falling back to the text the backend sent when it
// was not a number.
func (a Appointment) FeeLabel() string {
	if a.Fee == nil && a.FeeText != "" {
		return "R$ " + a.FeeText
	}
	return FormatFee(a.Fee)
}

// firstPresent decodes the first alias that is neither null nor an empty string.
func firstPresent(candidates ...json.RawMessage) any {
	for _, raw := range candidates {
		if isAbsent(raw) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		return v
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// decodeFee returns the numeric fee, or the raw text when it does not parse.
func decodeFee(raw json.RawMessage) (*float64, string) {
	if isAbsent(raw) {
		return nil, ""
	}
	var s FlexString
	_ = json.Unmarshal(raw, &s)
	text := strings.TrimSpace(string(s))
	if text == "" {
		return nil, ""
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, text
	}
	return &v, ""
}

// decodePatient handles paciente being either the patient's name or a nested object.
func decodePatient(raw json.RawMessage) (string, contact) {
	if isAbsent(raw) {
		return "", contact{}
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, contact{}
	}
	c := decodeContact(raw)
	return firstNonEmpty(string(c.Name), string(c.UserName)), c
}

func decodeContact(raw json.RawMessage) contact {
	var c contact
	if isAbsent(raw) {
		return c
	}
	// Malformed nested objects only lose their fallback values.
	_ = json.Unmarshal(raw, &c)
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// FlexString accepts a JSON string, number or boolean and keeps its text form.
// Identifiers such as agendamentoID and usucodigo arrive as either. Objects
// and arrays decode to the empty string so one odd field never fails a record.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		*f = ""
		return nil
	}
	*f = FlexString(trimmed)
	return nil
}
