package runtime

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

// render expands {{MACRO}} placeholders left to right. ok is false when a
// macro did not match, in which case the text must not be said.
func (e *Engine) render(ctx context.Context, state *domain.State, tmpl string, in turnInput) (text string, ok bool, jump *redirect, err error) {
	locs := placeholder.FindAllStringSubmatchIndex(tmpl, -1)
	if len(locs) == 0 {
		return tmpl, true, nil, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(tmpl[last:loc[0]])
		name := tmpl[loc[2]:loc[3]]

		out, err := e.callMacro(ctx, state, name, in)
		if err != nil {
			return "", false, nil, err
		}
		switch out.Kind {
		case domain.OutcomeValue:
			b.WriteString(out.Text)
		case domain.OutcomeMatched:
		case domain.OutcomeRedirect:
			return "", false, &redirect{target: out.Target, macro: name, reason: out.Reason}, nil
		default:
			return "", false, nil, nil
		}
		last = loc[1]
	}
	b.WriteString(tmpl[last:])
	return b.String(), true, nil, nil
}

// callMacro runs a macro against the session variables. Unknown macros and
// fatal outcomes become *domain.InvariantError.
func (e *Engine) callMacro(ctx context.Context, state *domain.State, name string, in turnInput) (domain.Outcome, error) {
	out, err := e.macros.Run(ctx, name, &macro.Call{
		Utterance: in.utterance,
		Raw:       in.raw,
		Vars:      &state.Vars,
	})
	if err != nil {
		return domain.Outcome{}, &domain.InvariantError{NodeID: state.CurrentNodeID, Macro: name, Reason: err.Error()}
	}

	e.logger.Debug("macro evaluated", "node_id", state.CurrentNodeID, "macro", name, "outcome", out.String(), "note", out.Reason)
	e.emitMacro(ctx, state, name, out)

	if out.Kind == domain.OutcomeFatal {
		return out, &domain.InvariantError{NodeID: state.CurrentNodeID, Macro: name, Reason: out.Reason}
	}
	return out, nil
}
