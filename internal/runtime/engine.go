package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/teevee/internal/compiler"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/ports"
)

// DefaultMaxHops bounds how many nodes a single Start or Navigate may enter
// through Next chains and redirects.
const DefaultMaxHops = 32

// FallbackText is said when no branch of the current node accepts the
// utterance and the node has no error branch.
const FallbackText = "sorry, i didn't catch that. could you say it another way?"

// Engine is the dialogue state machine. It holds no per-session data and is
// safe for concurrent use as long as its collaborators are.
type Engine struct {
	loader      ports.GraphLoader
	parser      *compiler.Parser
	macros      *macro.Registry
	ontology    ports.Ontology
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	entryNodeID string
	maxHops     int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observers for engine events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEntryNode overrides the node new sessions start at.
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		if nodeID != "" {
			e.entryNodeID = nodeID
		}
	}
}

// WithMaxHops overrides DefaultMaxHops.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// NewEngine creates an engine. macros and ontology may be nil when the graph
// does not use macro or ontology guards.
func NewEngine(loader ports.GraphLoader, macros *macro.Registry, ontology ports.Ontology, opts ...Option) *Engine {
	e := &Engine{
		loader:      loader,
		parser:      compiler.NewParser(),
		macros:      macros,
		ontology:    ontology,
		logger:      slog.New(slog.DiscardHandler),
		entryNodeID: domain.DefaultEntryNodeID,
		maxHops:     DefaultMaxHops,
	}
	if e.macros == nil {
		e.macros = macro.NewRegistry()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EntryNodeID returns the node new sessions start at.
func (e *Engine) EntryNodeID() string {
	return e.entryNodeID
}

// Start creates a session at the entry node and produces its opening lines.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	state := domain.NewState(sessionID, e.entryNodeID)
	if err := e.enter(ctx, state, e.entryNodeID, turnInput{}); err != nil {
		return e.fail(state, err)
	}
	return state, nil
}

// Render turns the pending system utterances into actions. The boolean is
// true when the session is over and no input should be requested.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	actions := make([]domain.ActionRequest, 0, len(state.Outbox)+1)
	for _, msg := range state.Outbox {
		actions = append(actions, domain.ActionRequest{
			Type:    domain.ActionRenderContent,
			Payload: msg,
		})
	}

	switch state.Status {
	case domain.StatusTerminated:
		return actions, true, nil
	case domain.StatusAborted:
		actions = append(actions, domain.ActionRequest{
			Type:    domain.ActionSystemMessage,
			Payload: "conversation aborted",
		})
		return actions, true, nil
	}

	actions = append(actions, domain.ActionRequest{
		Type:    domain.ActionRequestInput,
		Payload: domain.InputRequest{NodeID: state.CurrentNodeID},
	})
	return actions, false, nil
}

// Inspect returns every node of the graph, in loader order.
func (e *Engine) Inspect() ([]domain.Node, error) {
	ids, err := e.loader.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		node, err := e.loadNode(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, nil
}

func (e *Engine) loadNode(id string) (*domain.Node, error) {
	raw, err := e.loader.GetNode(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", id, err)
	}
	node, err := e.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse node %s: %w", id, err)
	}
	if err := validateExecution(node); err != nil {
		return nil, err
	}
	return node, nil
}

func base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: state.SessionID}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.State, nodeID string) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{EventBase: base(domain.EventNodeEnter, state), NodeID: nodeID})
	}
}

func (e *Engine) emitNodeLeave(ctx context.Context, state *domain.State, nodeID string) {
	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{EventBase: base(domain.EventNodeLeave, state), NodeID: nodeID})
	}
}

func (e *Engine) emitMacro(ctx context.Context, state *domain.State, name string, out domain.Outcome) {
	if e.hooks.OnMacro != nil {
		e.hooks.OnMacro(ctx, &domain.MacroEvent{
			EventBase: base(domain.EventMacro, state),
			NodeID:    state.CurrentNodeID,
			Macro:     name,
			Outcome:   out.Kind,
			Target:    out.Target,
		})
	}
}

func (e *Engine) emitTurn(ctx context.Context, state *domain.State, from, to string, guard domain.Guard) {
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase:  base(domain.EventTurn, state),
			FromNodeID: from,
			ToNodeID:   to,
			Guard:      guard.String(),
			Turn:       state.TurnCount,
		})
	}
}

var _ ports.DialogueEngine = (*Engine)(nil)
