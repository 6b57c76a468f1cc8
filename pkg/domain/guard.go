package domain

import "fmt"

// GuardKind defines how a branch guard is evaluated.
type GuardKind string

const (
	// GuardLiteral matches a phrase as whole words of the utterance.
	GuardLiteral GuardKind = "literal"
	// GuardOntology matches when the utterance mentions a term of a knowledge base category.
	GuardOntology GuardKind = "ontology"
	// GuardMacro delegates the decision to a named macro.
	GuardMacro GuardKind = "macro"
	// GuardAny matches any well-formed utterance.
	GuardAny GuardKind = "any"
	// GuardError is the fallback taken when nothing else matched.
	GuardError GuardKind = "error"
)

// Guard is the match condition of a branch.
type Guard struct {
	Kind GuardKind `json:"kind" yaml:"kind"`
	// Arg is the phrase, ontology category or macro name, depending on Kind.
	Arg string `json:"arg,omitempty" yaml:"arg,omitempty"`
}

func (g Guard) String() string {
	switch g.Kind {
	case GuardMacro:
		return "#" + g.Arg
	case GuardOntology:
		return fmt.Sprintf("#ONT(%s)", g.Arg)
	case GuardAny:
		return "#UNX"
	case GuardError:
		return "error"
	default:
		return "`" + g.Arg + "`"
	}
}
