package validator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Report is the outcome of a graph check. Errors make the graph unusable;
// warnings do not.
type Report struct {
	Errors   []string
	Warnings []string
}

// ValidationError lists every problem that makes a graph unusable. It
// matches ErrInvalidGraph.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidGraph
}

// Err returns the errors as a *ValidationError, or nil when there are none.
func (r Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &ValidationError{Problems: append([]string(nil), r.Errors...)}
}

type config struct {
	macros    map[string]bool
	redirects map[string][]string
}

// Option configures ValidateGraph.
type Option func(*config)

// WithMacros declares the registered macro names. Unknown macros in guards
// or placeholders become errors.
func WithMacros(names []string) Option {
	return func(c *config) {
		c.macros = make(map[string]bool, len(names))
		for _, n := range names {
			c.macros[strings.ToUpper(n)] = true
		}
	}
}

// WithRedirects declares the states each macro may redirect to.
func WithRedirects(targets map[string][]string) Option {
	return func(c *config) {
		c.redirects = targets
	}
}

// ValidateGraph walks the graph from entry and reports broken links, dead
// ends and unreachable states.
func ValidateGraph(nodes []domain.Node, entry string, opts ...Option) Report {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var r Report
	byID := make(map[string]*domain.Node, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if _, dup := byID[n.ID]; dup {
			r.Errors = append(r.Errors, fmt.Sprintf("duplicate node '%s'", n.ID))
		}
		byID[n.ID] = n
	}

	if _, ok := byID[entry]; !ok {
		r.Errors = append(r.Errors, fmt.Sprintf("entry node '%s' not found", entry))
		return r
	}

	visited := map[string]bool{}
	queue := []string{entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		n := byID[id]

		for _, target := range checkNode(&r, n, byID, cfg) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var unreachable []string
	for id := range byID {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(unreachable)
	for _, id := range unreachable {
		checkNode(&r, byID[id], byID, cfg)
		r.Warnings = append(r.Warnings, fmt.Sprintf("node '%s' is unreachable from '%s'", id, entry))
	}
	return r
}

// checkNode records the problems of one node and returns its live successors.
func checkNode(r *Report, n *domain.Node, byID map[string]*domain.Node, cfg config) []string {
	var next []string
	link := func(target, via string) {
		if _, ok := byID[target]; !ok {
			r.Errors = append(r.Errors, fmt.Sprintf("node '%s': %s points to missing node '%s'", n.ID, via, target))
			return
		}
		next = append(next, target)
	}
	macro := func(name, where string) {
		name = strings.ToUpper(name)
		if cfg.macros != nil && !cfg.macros[name] {
			r.Errors = append(r.Errors, fmt.Sprintf("node '%s': unknown macro %s in %s", n.ID, name, where))
		}
		for _, target := range cfg.redirects[name] {
			link(target, "macro "+name)
		}
	}
	templates := func(text, where string) {
		for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
			macro(m[1], where)
		}
	}

	if n.Terminal {
		if len(n.Branches) > 0 || n.Next != "" {
			r.Errors = append(r.Errors, fmt.Sprintf("terminal node '%s' has outgoing transitions", n.ID))
		}
		templates(n.Prompt, "prompt")
		return next
	}

	templates(n.Prompt, "prompt")
	if n.Next != "" {
		link(n.Next, "next")
	}

	fallback, errorBranches := false, 0
	for i, b := range n.Branches {
		where := fmt.Sprintf("branch %d", i)
		switch b.When.Kind {
		case domain.GuardMacro:
			macro(b.When.Arg, where)
		case domain.GuardAny:
			fallback = true
		case domain.GuardError:
			fallback = true
			errorBranches++
		}
		templates(b.Reply, where)
		if b.Target != "" {
			link(b.Target, where)
		}
	}
	if errorBranches > 1 {
		r.Errors = append(r.Errors, fmt.Sprintf("node '%s' declares %d error branches", n.ID, errorBranches))
	}
	if n.Next == "" && !fallback {
		r.Errors = append(r.Errors, fmt.Sprintf("node '%s' has no error branch and no next step", n.ID))
	}
	if n.ID == domain.DefaultEndNodeID && len(n.Branches) > 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("node '%s' must not have outgoing branches", n.ID))
	}
	return next
}

// ErrInvalidGraph marks a graph rejected by ValidateGraph.
var ErrInvalidGraph = errors.New("invalid graph")

// Check is ValidateGraph as an error: a *ValidationError or nil.
func Check(nodes []domain.Node, entry string, opts ...Option) error {
	if err := ValidateGraph(nodes, entry, opts...).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	return nil
}
