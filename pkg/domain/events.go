package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventMacro     EventType = "macro"
	EventTurn      EventType = "turn"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
}

// MacroEvent reports a macro evaluation and its outcome.
type MacroEvent struct {
	EventBase
	NodeID  string      `json:"node_id"`
	Macro   string      `json:"macro"`
	Outcome OutcomeKind `json:"outcome"`
	Target  string      `json:"target,omitempty"`
}

// TurnEvent reports a completed user turn.
type TurnEvent struct {
	EventBase
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
	Guard      string `json:"guard"`
	Turn       int    `json:"turn"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnMacro     func(context.Context, *MacroEvent)
	OnTurn      func(context.Context, *TurnEvent)
}
