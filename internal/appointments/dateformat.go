package appointments

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DateUnavailable is returned when no date was provided at all.
	DateUnavailable = "Data indisponível"
	// DateInvalid is returned when a date was provided but cannot be read.
	DateInvalid = "Data inválida"

	displayLayout = "02/01/2006"
)

// dateLayouts are tried in order before the split fallback.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// Formatter renders appointment dates as dd/mm/yyyy.
type Formatter struct {
	// Location is used for time.Time values. Strings keep the calendar date they name.
	Location *time.Location
}

// NewFormatter returns a Formatter for loc; nil means UTC.
func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{Location: loc}
}

// Format never fails: unreadable input yields DateInvalid, missing input DateUnavailable.
func (f Formatter) Format(v any) string {
	switch d := v.(type) {
	case nil:
		return DateUnavailable
	case time.Time:
		return f.formatTime(d)
	case *time.Time:
		if d == nil {
			return DateInvalid
		}
		return f.formatTime(*d)
	case string:
		return formatString(d)
	default:
		return DateInvalid
	}
}

func (f Formatter) formatTime(t time.Time) string {
	if t.IsZero() {
		return DateInvalid
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayLayout)
}

func formatString(s string) string {
	trimmed := strings.TrimSpace(s)
	if t, ok := ParseDate(trimmed); ok {
		return t.Format(displayLayout)
	}

	datePart, _, _ := strings.Cut(trimmed, "T")
	if datePart == "" {
		return DateInvalid
	}
	parts := strings.Split(datePart, "-")
	if len(parts) < 3 {
		return DateInvalid
	}
	year, month, day := parts[0], parts[1], parts[2]
	if !allDigits(year) || !allDigits(month) || !allDigits(day) {
		return DateInvalid
	}
	return day + "/" + month + "/" + year
}

// ParseDate parses s with the known layouts. The returned time keeps the wall
// clock and offset written in s, so its calendar date is the one s names.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// FormatFee renders the session fee as "R$ <raw number>" or "R$ —" when absent.
func FormatFee(fee *float64) string {
	if fee == nil {
		return "R$ " + Placeholder
	}
	return "R$ " + strconv.FormatFloat(*fee, 'f', -1, 64)
}
