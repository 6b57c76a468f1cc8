package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/teevee/pkg/domain"
)

// turnInput is one user utterance in the forms the matchers need.
type turnInput struct {
	raw        string
	utterance  string
	normalized string
}

func newTurnInput(raw string) turnInput {
	trimmed := strings.TrimSpace(raw)
	return turnInput{
		raw:        trimmed,
		utterance:  strings.ToLower(trimmed),
		normalized: domain.NormalizeText(trimmed),
	}
}

// redirect is a macro's request to jump to a state, bypassing the graph.
type redirect struct {
	target string
	macro  string
	reason string
}

// Navigate consumes one user utterance. Branches of the current node are
// tried in declared order with the error branch last. The returned state is
// a new value; the input state is never modified.
//
// When a macro reports an invariant violation the returned error is a
// *domain.InvariantError and the returned state carries StatusAborted.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, utterance string) (*domain.State, error) {
	switch state.Status {
	case domain.StatusTerminated:
		return nil, domain.ErrSessionTerminated
	case domain.StatusAborted:
		return nil, fmt.Errorf("%w: session was aborted", domain.ErrSessionTerminated)
	}

	node, err := e.loadNode(state.CurrentNodeID)
	if err != nil {
		return nil, err
	}

	next := state.Clone()
	next.Outbox = nil
	next.TurnCount++
	in := newTurnInput(utterance)

	for _, b := range orderBranches(node.Branches) {
		ok, jump, err := e.match(ctx, next, b.When, in)
		if err != nil {
			return e.fail(next, err)
		}
		if jump != nil {
			return e.follow(ctx, next, node, b.When, *jump, in)
		}
		if !ok {
			continue
		}

		reply, ok, jump, err := e.render(ctx, next, b.Reply, in)
		if err != nil {
			return e.fail(next, err)
		}
		if jump != nil {
			return e.follow(ctx, next, node, b.When, *jump, in)
		}
		if !ok {
			e.logger.Debug("reply could not be rendered, trying next branch", "node_id", node.ID, "guard", b.When.String())
			continue
		}
		if reply != "" {
			next.Outbox = append(next.Outbox, reply)
		}

		target := b.Target
		if target == "" {
			target = node.ID
		}
		e.emitNodeLeave(ctx, next, node.ID)
		e.emitTurn(ctx, next, node.ID, target, b.When)
		if err := e.enter(ctx, next, target, in); err != nil {
			return e.fail(next, err)
		}
		return next, nil
	}

	e.logger.Debug("no branch matched", "node_id", node.ID, "turn", next.TurnCount)
	next.Outbox = append(next.Outbox, FallbackText)
	return next, nil
}

// orderBranches moves the error branch to the end, keeping the rest in order.
func orderBranches(branches []domain.Branch) []domain.Branch {
	ordered := make([]domain.Branch, 0, len(branches))
	var fallback []domain.Branch
	for _, b := range branches {
		if b.When.Kind == domain.GuardError {
			fallback = append(fallback, b)
			continue
		}
		ordered = append(ordered, b)
	}
	return append(ordered, fallback...)
}

func (e *Engine) match(ctx context.Context, state *domain.State, g domain.Guard, in turnInput) (bool, *redirect, error) {
	switch g.Kind {
	case domain.GuardAny, domain.GuardError:
		return true, nil, nil
	case domain.GuardLiteral:
		return containsPhrase(words(in.normalized), words(g.Arg)), nil, nil
	case domain.GuardOntology:
		if e.ontology == nil {
			return false, nil, &domain.InvariantError{NodeID: state.CurrentNodeID, Reason: "ontology guard without an ontology: " + g.Arg}
		}
		return e.ontology.Contains(g.Arg, in.normalized), nil, nil
	case domain.GuardMacro:
		out, err := e.callMacro(ctx, state, g.Arg, in)
		if err != nil {
			return false, nil, err
		}
		if out.Kind == domain.OutcomeRedirect {
			return false, &redirect{target: out.Target, macro: g.Arg, reason: out.Reason}, nil
		}
		return out.Succeeded(), nil, nil
	default:
		return false, nil, fmt.Errorf("node %s: unknown guard kind %q", state.CurrentNodeID, g.Kind)
	}
}

// follow executes a macro redirect: the matched branch's own reply and target
// are ignored and the conversation enters the redirect target.
func (e *Engine) follow(ctx context.Context, state *domain.State, node *domain.Node, g domain.Guard, r redirect, in turnInput) (*domain.State, error) {
	e.logger.Info("macro redirect", "node_id", node.ID, "macro", r.macro, "target", r.target, "reason", r.reason)
	e.emitNodeLeave(ctx, state, node.ID)
	e.emitTurn(ctx, state, node.ID, r.target, g)
	if err := e.enter(ctx, state, r.target, in); err != nil {
		return e.fail(state, err)
	}
	return state, nil
}

// enter moves state into nodeID, renders its prompt and follows Next chains
// and prompt redirects until a node waits for input or terminates.
func (e *Engine) enter(ctx context.Context, state *domain.State, nodeID string, in turnInput) error {
	for hops := 0; ; hops++ {
		if hops >= e.maxHops {
			return fmt.Errorf("exceeded %d hops while entering %s", e.maxHops, nodeID)
		}
		node, err := e.loadNode(nodeID)
		if err != nil {
			return err
		}

		state.CurrentNodeID = node.ID
		state.History = append(state.History, node.ID)
		e.emitNodeEnter(ctx, state, node.ID)

		if node.Prompt != "" {
			text, ok, jump, err := e.render(ctx, state, node.Prompt, in)
			if err != nil {
				return err
			}
			if jump != nil {
				e.logger.Info("macro redirect", "node_id", node.ID, "macro", jump.macro, "target", jump.target, "reason", jump.reason)
				e.emitNodeLeave(ctx, state, node.ID)
				nodeID = jump.target
				continue
			}
			switch {
			case !ok:
				e.logger.Debug("prompt could not be rendered", "node_id", node.ID)
			case text != "":
				state.Outbox = append(state.Outbox, text)
			}
		}

		if node.Terminal {
			state.Status = domain.StatusTerminated
			state.Terminated = true
			e.logger.Debug("session terminated", "session_id", state.SessionID, "node_id", node.ID)
			return nil
		}
		if node.Next == "" {
			return nil
		}
		e.emitNodeLeave(ctx, state, node.ID)
		nodeID = node.Next
	}
}

// fail marks the state aborted on invariant violations. Other errors are
// infrastructure failures and drop the state.
func (e *Engine) fail(state *domain.State, err error) (*domain.State, error) {
	var inv *domain.InvariantError
	if errors.As(err, &inv) {
		state.Status = domain.StatusAborted
		e.logger.Error("invariant violation", "session_id", state.SessionID, "node_id", inv.NodeID, "macro", inv.Macro, "err", err)
		return state, err
	}
	return nil, err
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
