package domain

// ExecutionStatus defines the current mode of the session.
type ExecutionStatus string

const (
	StatusActive     ExecutionStatus = "active"     // Waiting for the next utterance
	StatusTerminated ExecutionStatus = "terminated" // Terminal node reached
	StatusAborted    ExecutionStatus = "aborted"    // Invariant violation, session unusable
)

// State represents the snapshot of one conversation (a session).
type State struct {
	SessionID string `json:"session_id"`

	// CurrentNodeID is the identifier of the active node.
	CurrentNodeID string `json:"current_node_id"`

	Status ExecutionStatus `json:"status"`

	// Vars is the session variable store. It is owned by this state only.
	Vars Variables `json:"vars"`

	// TurnCount is the number of user utterances processed.
	TurnCount int `json:"turn_count"`

	// History tracks every node entered, in order.
	History []string `json:"history,omitempty"`

	// Outbox holds the system utterances produced by the last transition.
	// Render reads it; the next transition replaces it.
	Outbox []string `json:"outbox,omitempty"`

	// Terminated is true once the terminal node was reached.
	Terminated bool `json:"terminated,omitempty"`

	// Sealed holds the encrypted snapshot when the store encrypts at rest.
	// Only envelopes written by such a store carry it.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates a clean state positioned at a specific node.
func NewState(sessionID, startNodeID string) *State {
	return &State{
		SessionID:     sessionID,
		CurrentNodeID: startNodeID,
		Status:        StatusActive,
		Vars:          NewVariables(),
		History:       []string{},
	}
}

// Clone returns a deep copy so transitions never mutate the caller's state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Vars = s.Vars.Clone()
	next.History = append([]string(nil), s.History...)
	next.Outbox = append([]string(nil), s.Outbox...)
	next.Sealed = append([]byte(nil), s.Sealed...)
	return &next
}
