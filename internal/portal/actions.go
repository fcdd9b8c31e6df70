package portal

// Decision is the user's answer to a confirmation prompt.
type Decision int

const (
	// DecisionAsk means the user has not answered yet.
	DecisionAsk Decision = iota
	DecisionConfirmed
	DecisionDeclined
)

// ConfirmField is the form field carrying the answer.
const ConfirmField = "confirmar"

// ParseDecision maps the confirmar form value ("sim"/"nao") to a Decision.
func ParseDecision(v string) Decision {
	switch v {
	case "sim":
		return DecisionConfirmed
	case "nao":
		return DecisionDeclined
	default:
		return DecisionAsk
	}
}

// Field is a hidden form field echoed back on confirmation.
type Field struct {
	Name  string
	Value string
}

// Confirmation asks the user before an action takes effect.
type Confirmation struct {
	Title    string
	Question string
	Action   string
	Fields   []Field
	Back     string
}

// Result tells the HTTP layer what to do after an action.
type Result struct {
	LoginRequired bool
	Confirm       *Confirmation
	Redirect      string
	// EndSession is set when the session cookie should be expired.
	EndSession bool
}
