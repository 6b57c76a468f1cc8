package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNodeNotFound is returned when the graph has no node with the requested ID.
var ErrNodeNotFound = errors.New("node not found")

// ErrSessionTerminated is returned when a turn is submitted to a finished session.
var ErrSessionTerminated = errors.New("session already terminated")

// InvariantError is raised when a macro runs in a context the transition graph
// was supposed to rule out. It is fatal for the session.
type InvariantError struct {
	NodeID string
	Macro  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in node '%s' (macro %s): %s", e.NodeID, e.Macro, e.Reason)
}
