package teevee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/teevee/internal/flow"
	"github.com/aretw0/teevee/internal/runtime"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/ontology"
	"github.com/aretw0/teevee/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	loader      ports.GraphLoader
	macros      *macro.Registry
	ontology    ports.Ontology
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	entryNodeID string
	maxHops     int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader replaces the built-in movie interview with another graph.
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithMacros sets the macro registry, usually macro.NewLibrary(...).
func WithMacros(r *macro.Registry) Option {
	return func(e *Engine) {
		e.macros = r
	}
}

// WithOntology replaces the embedded genre taxonomy.
func WithOntology(o ports.Ontology) Option {
	return func(e *Engine) {
		e.ontology = o
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEntryNode configures the initial node ID (default: "start").
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		e.entryNodeID = nodeID
	}
}

// WithMaxHops bounds the nodes entered per turn.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		e.maxHops = n
	}
}

// New initializes an Engine. Without WithLoader it serves the embedded movie
// interview, whose macros must be supplied with WithMacros.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		f, err := flow.Load("")
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in flow: %w", err)
		}
		if eng.loader, err = flow.NewLoader(f); err != nil {
			return nil, err
		}
		if eng.entryNodeID == "" {
			eng.entryNodeID = f.Entry
		}
	}
	if eng.macros == nil {
		eng.macros = macro.NewRegistry()
	}
	if eng.ontology == nil {
		eng.ontology = ontology.Default()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}

	eng.runtime = runtime.NewEngine(
		eng.loader,
		eng.macros,
		eng.ontology,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithEntryNode(eng.entryNodeID),
		runtime.WithMaxHops(eng.maxHops),
	)
	return eng, nil
}

// Start creates a new session at the entry node.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Render returns the actions for the pending system utterances and whether
// the session is over.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	return e.runtime.Render(ctx, state)
}

// Navigate consumes one user utterance and returns the next state.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, utterance string) (*domain.State, error) {
	return e.runtime.Navigate(ctx, state, utterance)
}

// Inspect returns the full graph definition for visualization or validation.
func (e *Engine) Inspect() ([]domain.Node, error) {
	return e.runtime.Inspect()
}

// EntryNodeID returns the node sessions start at.
func (e *Engine) EntryNodeID() string {
	return e.runtime.EntryNodeID()
}

// Loader returns the underlying GraphLoader used by the engine.
func (e *Engine) Loader() ports.GraphLoader {
	return e.loader
}

// Macros returns the macro registry.
func (e *Engine) Macros() *macro.Registry {
	return e.macros
}

var _ ports.DialogueEngine = (*Engine)(nil)
