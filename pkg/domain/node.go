package domain

// Reserved node identifiers.
const (
	// DefaultEntryNodeID is the node every new session starts at.
	DefaultEntryNodeID = "start"
	// DefaultEndNodeID is the terminal node of the interview.
	DefaultEndNodeID = "end"
)

// Node represents a conversational state in the transition graph.
type Node struct {
	ID string `json:"id" yaml:"id"`

	// Prompt is the system utterance rendered when the node is entered.
	// It may contain macro placeholders such as {{NAME}}.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// Next makes the node a soft step: after the prompt is rendered the
	// machine moves on without waiting for input.
	Next string `json:"next,omitempty" yaml:"next,omitempty"`

	// Branches are evaluated against the utterance in declared order,
	// with the error branch always tried last.
	Branches []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Terminal marks a sink state. No further turns are processed.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Branch is a guard/reply/target triple.
type Branch struct {
	When Guard `json:"when" yaml:"when"`

	// Reply is rendered when the guard matches. Empty means no reply.
	Reply string `json:"reply,omitempty" yaml:"reply,omitempty"`

	// Target is the node to move to. Empty means stay (self-loop).
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// NeedsInput reports whether the node halts the conversation for user input.
func (n *Node) NeedsInput() bool {
	return !n.Terminal && n.Next == ""
}

// ErrorBranch returns the node's fallback branch, if declared.
func (n *Node) ErrorBranch() (Branch, bool) {
	for _, b := range n.Branches {
		if b.When.Kind == GuardError {
			return b, true
		}
	}
	return Branch{}, false
}
