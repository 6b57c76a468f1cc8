package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTagger struct {
	calls int
	ents  []domain.Entity
	err   error
}

func (c *countingTagger) Tag(context.Context, string) ([]domain.Entity, error) {
	c.calls++
	return c.ents, c.err
}

func TestExtract_FiltersByLabelInOrder(t *testing.T) {
	tagger := &countingTagger{ents: []domain.Entity{
		{Text: "Maria", Label: domain.LabelPerson},
		{Text: "Brazilian", Label: domain.LabelNORP},
		{Text: "Joao", Label: domain.LabelPerson},
	}}
	x := extract.New(tagger)

	people, err := x.Extract(context.Background(), "Maria and Joao are Brazilian", domain.LabelPerson)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maria", "Joao"}, people)

	norp, ok, err := x.First(context.Background(), "Maria and Joao are Brazilian", domain.LabelNORP)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Brazilian", norp)
}

func TestExtract_BlankSkipsTagger(t *testing.T) {
	tagger := &countingTagger{}
	x := extract.New(tagger)

	spans, err := x.Extract(context.Background(), "   ", domain.LabelPerson)
	require.NoError(t, err)
	assert.NotNil(t, spans)
	assert.Empty(t, spans)
	assert.Zero(t, tagger.calls)
}

func TestExtract_NothingRecognized(t *testing.T) {
	x := extract.New(&countingTagger{})

	_, ok, err := x.First(context.Background(), "hello there", domain.LabelPerson)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtract_TaggerError(t *testing.T) {
	x := extract.New(&countingTagger{err: errors.New("model not loaded")})

	spans, err := x.Extract(context.Background(), "hi", domain.LabelPerson)
	assert.ErrorContains(t, err, "model not loaded")
	assert.Empty(t, spans)
}
