package appointments

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, raw string) Appointment {
	t.Helper()
	var a Appointment
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	return a
}

func TestAppointmentUnmarshalPrimaryFields(t *testing.T) {
	a := decodeOne(t, `{
		"agendamentoID": 1,
		"data": "2024-03-15",
		"horario": "14:00",
		"horarioInicio": "14:00:00",
		"paciente": "Maria Souza",
		"observacoes": "Primeira consulta",
		"valorSessao": 150,
		"telefone": "31 99999-0000",
		"email": "maria@example.com"
	}`)

	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2024-03-15", a.RawDate)
	assert.Equal(t, "2024-03-15", a.DateString())
	assert.Equal(t, "14:00", a.Time)
	assert.Equal(t, "14:00:00", a.StartTime)
	assert.Equal(t, "Maria Souza", a.PatientName)
	assert.Equal(t, "Primeira consulta", a.Observations)
	require.NotNil(t, a.Fee)
	assert.Equal(t, 150.0, *a.Fee)
	assert.Equal(t, "31 99999-0000", a.Phone)
	assert.Equal(t, "maria@example.com", a.Email)
}

func TestAppointmentDateAliases(t *testing.T) {
	f := NewFormatter(nil)
	primary := decodeOne(t, `{"agendamentoID": 7, "data": "2024-03-15"}`)

	for _, alias := range []string{"dataSessao", "horarioData", "startDate", "date"} {
		t.Run(alias, func(t *testing.T) {
			a := decodeOne(t, `{"agendamentoID": 7, "data": null, "`+alias+`": "2024-03-15"}`)
			assert.Equal(t, "2024-03-15", a.RawDate)
			assert.Equal(t, f.Format(primary.RawDate), f.Format(a.RawDate))
		})
	}
}

func TestAppointmentDateAliasPriority(t *testing.T) {
	a := decodeOne(t, `{"data": "", "dataSessao": "2024-04-01", "date": "2030-01-01"}`)
	assert.Equal(t, "2024-04-01", a.RawDate)

	none := decodeOne(t, `{"agendamentoID": "9"}`)
	assert.Nil(t, none.RawDate)
	assert.Equal(t, "", none.DateString())
}

func TestAppointmentNestedContactFallbacks(t *testing.T) {
	a := decodeOne(t, `{
		"agendamentoID": "abc",
		"paciente": {"nome": "João", "telefone": "111", "usuemail": ""},
		"usuario": {"telefone": "222", "usuemail": "joao@example.com"}
	}`)
	assert.Equal(t, "abc", a.ID)
	assert.Equal(t, "João", a.PatientName)
	assert.Equal(t, "111", a.Phone)
	assert.Equal(t, "joao@example.com", a.Email)
}

func TestAppointmentPatientNameAlias(t *testing.T) {
	a := decodeOne(t, `{"pacienteNome": "Ana", "horario": "09:30"}`)
	assert.Equal(t, "Ana", a.PatientName)
	assert.Equal(t, "09:30", a.StartTime, "start time falls back to horario")
}

func TestAppointmentFeeVariants(t *testing.T) {
	assert.Nil(t, decodeOne(t, `{"valorSessao": null}`).Fee)
	assert.Nil(t, decodeOne(t, `{}`).Fee)

	s := decodeOne(t, `{"valorSessao": "120.50"}`)
	require.NotNil(t, s.Fee)
	assert.Equal(t, 120.5, *s.Fee)

	comma := decodeOne(t, `{"valorSessao": "150,00"}`)
	assert.Nil(t, comma.Fee)
	assert.Equal(t, "150,00", comma.FeeText)
	assert.Equal(t, "R$ 150,00", comma.FeeLabel())

	assert.Equal(t, "R$ 150", decodeOne(t, `{"valorSessao": 150}`).FeeLabel())
	assert.Equal(t, "R$ —", decodeOne(t, `{"valorSessao": {"valor": 1}}`).FeeLabel())
}

func TestAppointmentListToleratesOddFields(t *testing.T) {
	var list []Appointment
	require.NoError(t, json.Unmarshal([]byte(`[
		{"agendamentoID": 1, "data": "2024-03-15", "valorSessao": 150, "telefone": "31 1111-0000"},
		{"agendamentoID": 2, "data": "2024-03-16", "valorSessao": "150,00", "telefone": {"ddd": "31"}, "paciente": ["x"]},
		{"agendamentoID": {"v": 3}, "data": {"dia": 17}, "horario": ["14:00"]}
	]`), &list))
	require.Len(t, list, 3)

	assert.Equal(t, "1", list[0].ID)
	require.NotNil(t, list[0].Fee)
	assert.Equal(t, "31 1111-0000", list[0].Phone)

	assert.Equal(t, "2", list[1].ID)
	assert.Equal(t, "R$ 150,00", list[1].FeeLabel())
	assert.Empty(t, list[1].Phone)
	assert.Empty(t, list[1].PatientName)

	assert.Empty(t, list[2].ID)
	assert.Empty(t, list[2].Time)
	assert.Equal(t, DateInvalid, NewFormatter(nil).Format(list[2].RawDate))
}

func TestAppointmentListPreservesOrder(t *testing.T) {
	var list []Appointment
	require.NoError(t, json.Unmarshal([]byte(`[
		{"agendamentoID": 3, "data": "2024-05-01"},
		{"agendamentoID": 1, "data": "2024-01-01"},
		{"agendamentoID": 2, "data": "2024-03-01"}
	]`), &list))
	require.Len(t, list, 3)
	assert.Equal(t, []string{"3", "1", "2"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "x", "c": null}`), &v))
	assert.Equal(t, FlexString("42"), v.A)
	assert.Equal(t, FlexString("x"), v.B)
	assert.Equal(t, FlexString(""), v.C)

	require.NoError(t, json.Unmarshal([]byte(`{"a": {"k": 1}, "b": [1, 2]}`), &v))
	assert.Equal(t, FlexString(""), v.A)
	assert.Equal(t, FlexString(""), v.B)
}
