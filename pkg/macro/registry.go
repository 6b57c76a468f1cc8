// Package macro holds the named units a dialogue graph calls from its guards
// and replies, and the library of macros the movie interview needs.
package macro

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/teevee/pkg/domain"
)

// ErrUnknownMacro is returned by Registry.Run for unregistered names.
var ErrUnknownMacro = errors.New("unknown macro")

// Call is the input of a macro invocation.
type Call struct {
	// Utterance is the lowercased user utterance.
	Utterance string
	// Raw is the utterance as typed.
	Raw string
	// Vars is the session's variable store. Macros may mutate it.
	Vars *domain.Variables
	// Args are the literal arguments written in the graph, e.g. #IF(x, y).
	Args []string
}

// Macro is a named unit invoked by the state machine.
type Macro interface {
	Run(ctx context.Context, call *Call) domain.Outcome
}

// Func adapts a plain function to Macro.
type Func func(ctx context.Context, call *Call) domain.Outcome

// Run implements Macro.
func (f Func) Run(ctx context.Context, call *Call) domain.Outcome {
	return f(ctx, call)
}

// Registry maps macro names to implementations. Names are case-insensitive.
type Registry struct {
	mu     sync.RWMutex
	macros map[string]Macro
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{macros: make(map[string]Macro)}
}

// Register adds m under name, replacing any previous entry.
func (r *Registry) Register(name string, m Macro) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.macros[strings.ToUpper(name)] = m
}

// Lookup returns the macro registered under name.
func (r *Registry) Lookup(name string) (Macro, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.macros[strings.ToUpper(name)]
	return m, ok
}

// Names lists registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.macros))
	for n := range r.macros {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run looks up name and invokes it.
func (r *Registry) Run(ctx context.Context, name string, call *Call) (domain.Outcome, error) {
	m, ok := r.Lookup(name)
	if !ok {
		return domain.Outcome{}, fmt.Errorf("%w: %s", ErrUnknownMacro, name)
	}
	return m.Run(ctx, call), nil
}
