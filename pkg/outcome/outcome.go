package outcome

import "fmt"

// Status is the tri-state result of a harness check.
type Status int

const (
	// NotSatisfied means the check was evaluated and the condition does not hold.
	NotSatisfied Status = iota
	// Satisfied means the check was evaluated and the condition holds.
	Satisfied
	// Inconclusive means the check could not be evaluated (I/O, storage or parse failure).
	Inconclusive
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case NotSatisfied:
		return "not_satisfied"
	case Inconclusive:
		return "inconclusive"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome carries a Status and, for anything other than Satisfied, the reason.
type Outcome struct {
	Status Status
	Reason string
}

// Satisfy returns a Satisfied outcome.
func Satisfy() Outcome {
	return Outcome{Status: Satisfied}
}

// Fail returns a NotSatisfied outcome with a formatted reason.
func Fail(format string, args ...any) Outcome {
	return Outcome{Status: NotSatisfied, Reason: fmt.Sprintf(format, args...)}
}

// Inconclusivef returns an Inconclusive outcome wrapping the error that prevented evaluation.
func Inconclusivef(err error, format string, args ...any) Outcome {
	reason := fmt.Sprintf(format, args...)
	if err != nil {
		reason = fmt.Sprintf("%s: %v", reason, err)
	}
	return Outcome{Status: Inconclusive, Reason: reason}
}

// OK collapses the outcome to the boolean the CLI reports.
func (o Outcome) OK() bool {
	return o.Status == Satisfied
}

// Label renders the collapsed boolean as "True" or "False".
func (o Outcome) Label() string {
	if o.OK() {
		return "True"
	}
	return "False"
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Status.String()
	}
	return o.Status.String() + " (" + o.Reason + ")"
}
