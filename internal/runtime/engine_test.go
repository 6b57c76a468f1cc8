package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/teevee/internal/flow"
	"github.com/aretw0/teevee/internal/runtime"
	"github.com/aretw0/teevee/internal/testutils"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterview(t *testing.T, opts ...runtime.Option) *runtime.Engine {
	t.Helper()
	f, err := flow.Load("")
	require.NoError(t, err)
	loader, err := flow.NewLoader(f)
	require.NoError(t, err)
	return runtime.NewEngine(loader, testutils.Library(t, nil), ontology.Default(), opts...)
}

func say(t *testing.T, e *runtime.Engine, state *domain.State, utterance string) *domain.State {
	t.Helper()
	next, err := e.Navigate(context.Background(), state, utterance)
	require.NoError(t, err)
	return next
}

func TestEngine_Start(t *testing.T) {
	e := newInterview(t)

	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentNodeID)
	assert.Equal(t, []string{"hey! :)\nnice to meet you! what's your name?"}, state.Outbox)

	actions, done, err := e.Render(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, actions, 2)
	assert.Equal(t, domain.ActionRenderContent, actions[0].Type)
	assert.Equal(t, domain.ActionRequestInput, actions[1].Type)
	assert.Equal(t, domain.InputRequest{NodeID: "start"}, actions[1].Payload)
}

func TestEngine_FullInterview(t *testing.T) {
	e := newInterview(t)
	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)

	state = say(t, e, state, "hi, i'm Sarah")
	assert.Equal(t, "getmovie", state.CurrentNodeID)
	require.Len(t, state.Outbox, 2)
	assert.Equal(t, "Sarah-- what a beautiful name!\ni'm teevee, a bot that likes to talk about movies.", state.Outbox[0])
	assert.Equal(t, "\ntell me about a movie you've seen! use proper citation and enclose its name in quotes.", state.Outbox[1])

	state = say(t, e, state, `I watched "Inception" yesterday`)
	assert.Equal(t, "genre", state.CurrentNodeID)
	require.Len(t, state.Outbox, 1)
	assert.True(t, strings.Contains(state.Outbox[0], "action") || strings.Contains(state.Outbox[0], "science fiction"), state.Outbox[0])
	assert.Equal(t, 1, state.Vars.PickID)

	state = say(t, e, state, "science fiction, for sure")
	assert.Equal(t, "actor", state.CurrentNodeID)
	require.Len(t, state.Outbox, 2)
	assert.Equal(t, "i love sci-fi films too!", state.Outbox[0])
	assert.True(t, strings.HasPrefix(state.Outbox[1], "Did you like "), state.Outbox[1])

	state = say(t, e, state, "yes!")
	assert.Equal(t, "end", state.CurrentNodeID)
	assert.Equal(t, []string{"just maybe i'll watch now. have a good one Sarah!"}, state.Outbox)
	assert.Equal(t, domain.StatusTerminated, state.Status)
	assert.Equal(t, 4, state.TurnCount)

	actions, done, err := e.Render(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, actions, 1)

	_, err = e.Navigate(context.Background(), state, "hello?")
	assert.ErrorIs(t, err, domain.ErrSessionTerminated)
}

func TestEngine_NameNotRecognised(t *testing.T) {
	e := newInterview(t)
	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)

	state = say(t, e, state, "hello there")
	assert.Equal(t, "start/retry", state.CurrentNodeID)
	assert.Equal(t, []string{"sorry, i didn't catch that, i'm sorry :(. let's start over."}, state.Outbox)
	assert.False(t, state.Vars.HasName())

	state = say(t, e, state, "ok")
	assert.Equal(t, "start", state.CurrentNodeID)
	assert.Equal(t, []string{"hey! :)\nnice to meet you! what's your name?"}, state.Outbox)
}

func atGetMovie(t *testing.T, e *runtime.Engine) *domain.State {
	t.Helper()
	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	return say(t, e, state, "my name is Ada")
}

func TestEngine_NoQuoteRedirectsToNoMovie(t *testing.T) {
	e := newInterview(t)
	state := atGetMovie(t, e)

	state = say(t, e, state, "i watched inception")
	assert.Equal(t, "getmovie", state.CurrentNodeID)
	assert.Equal(t, []string{
		"i got my wires crossed! could you repeat that?",
		"\ntell me about another movie you've seen! use proper citation and enclose its name in quotes.",
	}, state.Outbox)
	assert.Contains(t, state.History, "nomovie")
}

func TestEngine_UnknownTitleRedirectsToDontKnow(t *testing.T) {
	e := newInterview(t)
	state := atGetMovie(t, e)

	state = say(t, e, state, `"Citizen Kane"`)
	assert.Equal(t, "dontknow", state.CurrentNodeID)
	assert.Equal(t, []string{"i don't know that one! could you tell me about it?"}, state.Outbox)
	assert.Equal(t, "Citizen Kane", state.Vars.UserDescription)

	state = say(t, e, state, "it is a classic")
	assert.Equal(t, "getmovie", state.CurrentNodeID)
	assert.Equal(t, []string{"\ntell me about another movie you've seen! use proper citation and enclose its name in quotes."}, state.Outbox)
}

func TestEngine_DemonymDetour(t *testing.T) {
	e := newInterview(t)
	state := atGetMovie(t, e)
	state = say(t, e, state, `"The Dark Knight"`)
	require.Equal(t, "genre", state.CurrentNodeID)

	state = say(t, e, state, "my family is Korean")
	assert.Equal(t, "culture", state.CurrentNodeID)
	assert.Equal(t, []string{"That's awesome, what ties you to Korean culture?"}, state.Outbox)

	state = say(t, e, state, "my grandmother")
	assert.Equal(t, "actor", state.CurrentNodeID)
	require.Len(t, state.Outbox, 2)
	assert.Equal(t, "that's awesome, Ada. i hope that The Dark Knight made you think about Korean a bit, even if they were unrelated.", state.Outbox[0])
	assert.Contains(t, []string{"Did you like christian bale's performance?", "Did you like heath ledger's performance?"}, state.Outbox[1])
}

func TestEngine_GenreCatchAll(t *testing.T) {
	e := newInterview(t)
	state := atGetMovie(t, e)
	state = say(t, e, state, `"Inception"`)

	state = say(t, e, state, "dunno really")
	assert.Equal(t, "actor", state.CurrentNodeID)
	require.Len(t, state.Outbox, 1)
	assert.True(t, strings.HasPrefix(state.Outbox[0], "Did you like "))
}

func TestEngine_NavigateDoesNotMutateInput(t *testing.T) {
	e := newInterview(t)
	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	before := state.Clone()

	_ = say(t, e, state, "i'm Sarah")
	assert.Equal(t, before, state)
}

func TestEngine_Inspect(t *testing.T) {
	e := newInterview(t)

	nodes, err := e.Inspect()
	require.NoError(t, err)
	assert.Len(t, nodes, 9)
}
