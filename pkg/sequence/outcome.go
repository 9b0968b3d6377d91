// Package sequence runs ordered steps of arm commands. A Runner walks a
// Sequence with a cursor and decides from each step's Outcome whether to
// advance, rewind, inject a selected step or stop.
package sequence

import "fmt"

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	Failure
	Abort
	Repeat
	SelectKey
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Abort:
		return "abort"
	case Repeat:
		return "repeat"
	case SelectKey:
		return "select"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of executing a Step. Key is only set for SelectKey.
type Outcome struct {
	Kind OutcomeKind
	Key  string
}

// Succeeded returns a Success outcome.
func Succeeded() Outcome { return Outcome{Kind: Success} }

// Failed returns a Failure outcome.
func Failed() Outcome { return Outcome{Kind: Failure} }

// Aborted returns an Abort outcome.
func Aborted() Outcome { return Outcome{Kind: Abort} }

// Repeated returns a Repeat outcome.
func Repeated() Outcome { return Outcome{Kind: Repeat} }

// Selected returns a SelectKey outcome carrying key.
func Selected(key string) Outcome { return Outcome{Kind: SelectKey, Key: key} }

func (o Outcome) String() string {
	if o.Kind == SelectKey {
		return fmt.Sprintf("select(%s)", o.Key)
	}
	return o.Kind.String()
}
