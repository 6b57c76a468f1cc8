package domain

import "fmt"

// OutcomeKind tags the result of a macro evaluation.
type OutcomeKind int

const (
	// OutcomeNotMatched means the guard failed; the next branch is tried.
	OutcomeNotMatched OutcomeKind = iota
	// OutcomeMatched is a successful gate with no text.
	OutcomeMatched
	// OutcomeValue is a success carrying text for interpolation.
	OutcomeValue
	// OutcomeRedirect forces the conversation into another node,
	// overriding the target declared by the branch.
	OutcomeRedirect
	// OutcomeFatal signals a broken precondition of the transition graph.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotMatched:
		return "not_matched"
	case OutcomeMatched:
		return "matched"
	case OutcomeValue:
		return "value"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the tagged result a macro hands to the state machine.
type Outcome struct {
	Kind   OutcomeKind
	Text   string // OutcomeValue
	Target string // OutcomeRedirect
	Reason string // OutcomeFatal, and an optional note for the others
}

func NotMatched() Outcome         { return Outcome{Kind: OutcomeNotMatched} }
func Matched() Outcome            { return Outcome{Kind: OutcomeMatched} }
func Value(text string) Outcome   { return Outcome{Kind: OutcomeValue, Text: text} }
func Fatal(reason string) Outcome { return Outcome{Kind: OutcomeFatal, Reason: reason} }
func Redirect(target string) Outcome {
	return Outcome{Kind: OutcomeRedirect, Target: target}
}

// Succeeded reports whether the outcome satisfies a guard.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeMatched || o.Kind == OutcomeValue
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeValue:
		return fmt.Sprintf("value(%q)", o.Text)
	case OutcomeRedirect:
		return "redirect(" + o.Target + ")"
	case OutcomeFatal:
		return "fatal(" + o.Reason + ")"
	default:
		return o.Kind.String()
	}
}
