package portal

import (
	"strings"

	"github.com/wolfman30/patient-portal/internal/appointments"
	"github.com/wolfman30/patient-portal/internal/session"
)

// StatusScheduled is the only status the page shows; cancelled appointments
// are removed by the backend.
const StatusScheduled = "AGENDADA"

// Card is one rendered appointment.
type Card struct {
	ID           string
	Date         string
	Status       string
	Time         string
	PatientName  string
	Phone        string
	Email        string
	Observations string
	Fee          string
	Reschedule   RescheduleRequest
}

// BuildCards maps appointments to cards in input order. Contact details fall
// back to the logged-in user's record, then to a placeholder.
func BuildCards(list []appointments.Appointment, user *session.User, f appointments.Formatter) []Card {
	if len(list) == 0 {
		return nil
	}
	var userPhone, userEmail string
	if user != nil {
		userPhone, userEmail = user.Phone, user.Email
	}

	cards := make([]Card, 0, len(list))
	for _, a := range list {
		cards = append(cards, Card{
			ID:           a.ID,
			Date:         f.Format(a.RawDate),
			Status:       StatusScheduled,
			Time:         orPlaceholder(a.Time),
			PatientName:  orPlaceholder(a.PatientName),
			Phone:        orPlaceholder(a.Phone, userPhone),
			Email:        orPlaceholder(a.Email, userEmail),
			Observations: strings.TrimSpace(a.Observations),
			Fee:          a.FeeLabel(),
			Reschedule: RescheduleRequest{
				AppointmentID: a.ID,
				Date:          a.DateString(),
				Time:          a.StartTime,
				PatientName:   orDefault("Paciente", a.PatientName),
			},
		})
	}
	return cards
}

func orPlaceholder(values ...string) string {
	return orDefault(appointments.Placeholder, values...)
}

func orDefault(def string, values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return def
}
