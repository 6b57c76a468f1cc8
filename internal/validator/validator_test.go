package validator

import (
	"testing"

	"github.com/aretw0/teevee/internal/flow"
	"github.com/aretw0/teevee/internal/testutils"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errBranch(to string) domain.Branch {
	return domain.Branch{When: domain.Guard{Kind: domain.GuardError}, Target: to}
}

func TestValidateGraph_EmbeddedFlowIsClean(t *testing.T) {
	f, err := flow.Load("")
	require.NoError(t, err)

	r := ValidateGraph(f.Nodes, f.Entry,
		WithMacros(testutils.Library(t, nil).Names()),
		WithRedirects(macro.RedirectTargets()),
	)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.NoError(t, r.Err())
}

func TestValidateGraph_MissingEntry(t *testing.T) {
	r := ValidateGraph([]domain.Node{{ID: "a", Terminal: true}}, "start")
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "entry node 'start' not found")
}

func TestValidateGraph_BrokenLinkAndDeadEnd(t *testing.T) {
	nodes := []domain.Node{
		{ID: "start", Branches: []domain.Branch{{When: domain.Guard{Kind: domain.GuardLiteral, Arg: "yes"}, Target: "ghost"}}},
	}
	r := ValidateGraph(nodes, "start")
	assert.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0], "missing node 'ghost'")
	assert.Contains(t, r.Errors[1], "no error branch")
}

func TestValidateGraph_RedirectTargets(t *testing.T) {
	nodes := []domain.Node{
		{ID: "start", Branches: []domain.Branch{
			{When: domain.Guard{Kind: domain.GuardMacro, Arg: "movie"}, Target: "end"},
			errBranch("end"),
		}},
		{ID: "end", Terminal: true},
	}
	r := ValidateGraph(nodes, "start", WithRedirects(macro.RedirectTargets()))
	assert.Len(t, r.Errors, 2, "nomovie and dontknow are both missing")
}

func TestValidateGraph_UnknownMacroInPlaceholder(t *testing.T) {
	nodes := []domain.Node{
		{ID: "start", Prompt: "{{ NOPE }}", Branches: []domain.Branch{errBranch("end")}},
		{ID: "end", Terminal: true},
	}
	r := ValidateGraph(nodes, "start", WithMacros([]string{"NAME"}))
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "unknown macro NOPE")
}

func TestValidateGraph_TerminalAndEndRules(t *testing.T) {
	nodes := []domain.Node{
		{ID: "start", Next: "end"},
		{ID: "end", Branches: []domain.Branch{errBranch("start")}},
		{ID: "sink", Terminal: true, Next: "start"},
	}
	r := ValidateGraph(nodes, "start")
	assert.Contains(t, r.Errors, "node 'end' must not have outgoing branches")
	assert.Contains(t, r.Errors, "terminal node 'sink' has outgoing transitions")
	assert.Equal(t, []string{"node 'sink' is unreachable from 'start'"}, r.Warnings)
}

func TestCheck_WrapsSentinel(t *testing.T) {
	err := Check(nil, "start")
	assert.ErrorIs(t, err, ErrInvalidGraph)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"entry node 'start' not found"}, verr.Problems)
}

func TestReport_ErrIsTyped(t *testing.T) {
	assert.NoError(t, Report{Warnings: []string{"w"}}.Err())

	err := Report{Errors: []string{"a", "b"}}.Err()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Equal(t, "found 2 errors:\n- a\n- b", err.Error())
}
