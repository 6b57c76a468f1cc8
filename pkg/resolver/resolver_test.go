package resolver_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *csv.Catalog {
	t.Helper()
	c, err := csv.Read(
		strings.NewReader(ports.CatalogFixture.Metadata),
		strings.NewReader(ports.CatalogFixture.Keywords),
		strings.NewReader(ports.CatalogFixture.Credits),
	)
	require.NoError(t, err)
	return c
}

func TestResolve_Kinds(t *testing.T) {
	r := resolver.New(newCatalog(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		utterance string
		want      resolver.Kind
	}{
		{"no quotes", "i saw inception last week", resolver.KindNoQuote},
		{"single token exact", `I loved "Inception"!`, resolver.KindResolved},
		{"single token is not a substring search", `"Toy"`, resolver.KindNotFound},
		{"unknown", `"Citizen Kane"`, resolver.KindNotFound},
		{"punctuation stripped", `"Inception."`, resolver.KindResolved},
		{"multi token any order", `"knight dark"`, resolver.KindResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(ctx, tt.utterance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind)
		})
	}
}

func TestResolve_Inception(t *testing.T) {
	r := resolver.New(newCatalog(t))

	res, err := r.Resolve(context.Background(), `My favourite is "Inception." by Nolan`)
	require.NoError(t, err)
	require.Equal(t, resolver.KindResolved, res.Kind)

	assert.Equal(t, "Inception.", res.Description, "description keeps the user's spelling")
	assert.Equal(t, 1, res.PickID)
	assert.Equal(t, []domain.MovieSummary{{ID: 1, Title: "Inception"}}, res.Results)
	assert.Equal(t, []string{"Action", "Science Fiction"}, res.Genres[1])
	assert.Equal(t, []string{"dream", "subconscious"}, res.Keywords[1])
	require.Len(t, res.Cast, 3)
	assert.Equal(t, domain.CastCredit{Actor: "Leonardo DiCaprio", Character: "Dom Cobb"}, res.Cast[0])
}

func TestResolve_MultipleMatches(t *testing.T) {
	r := resolver.New(newCatalog(t))

	res, err := r.Resolve(context.Background(), `"The Dark Knight"`)
	require.NoError(t, err)
	require.Equal(t, resolver.KindResolved, res.Kind)

	assert.Equal(t, 2, res.Matches)
	assert.Equal(t, 2, res.PickID, "first match in dataset order is picked")
	assert.Contains(t, res.Genres, 3)
	assert.Contains(t, res.Keywords, 2)
	assert.NotContains(t, res.Keywords, 3, "unparseable keywords are omitted")
	assert.Equal(t, "Christian Bale", res.Cast[0].Actor)
	assert.Equal(t, "Heath Ledger", res.Cast[1].Actor)
}

func TestResolve_TooMany(t *testing.T) {
	r := resolver.New(newCatalog(t), resolver.WithMaxResults(1))

	res, err := r.Resolve(context.Background(), `"the dark"`)
	require.NoError(t, err)
	assert.Equal(t, resolver.KindTooMany, res.Kind)
	assert.Equal(t, 2, res.Matches)
	assert.Nil(t, res.Results)
}

func TestResolve_BlankQuoteMatchesEveryTitle(t *testing.T) {
	r := resolver.New(newCatalog(t), resolver.WithMaxResults(1))

	res, err := r.Resolve(context.Background(), `I saw "   " yesterday`)
	require.NoError(t, err)
	assert.Equal(t, resolver.KindTooMany, res.Kind)
	assert.Equal(t, 4, res.Matches)
}

func TestResolution_Apply(t *testing.T) {
	r := resolver.New(newCatalog(t))
	ctx := context.Background()
	vars := domain.NewVariables()

	res, err := r.Resolve(ctx, "nothing quoted")
	require.NoError(t, err)
	res.Apply(&vars)
	assert.Empty(t, vars.UserDescription)

	res, err = r.Resolve(ctx, `"Unknown Film"`)
	require.NoError(t, err)
	res.Apply(&vars)
	assert.Equal(t, "Unknown Film", vars.UserDescription)
	assert.False(t, vars.Picked)

	res, err = r.Resolve(ctx, `"Inception"`)
	require.NoError(t, err)
	res.Apply(&vars)
	assert.True(t, vars.Picked)
	assert.Equal(t, []string{"Action", "Science Fiction"}, vars.PickedGenres())
	assert.Len(t, vars.Characters, 3)
}

type failingCatalog struct{ ports.MovieCatalog }

func (failingCatalog) FindTitles(context.Context, domain.TitleQuery) ([]domain.MovieRow, error) {
	return nil, errors.New("disk on fire")
}

func TestResolve_CatalogError(t *testing.T) {
	r := resolver.New(failingCatalog{})

	_, err := r.Resolve(context.Background(), `"Inception"`)
	assert.ErrorContains(t, err, "disk on fire")
}

type brokenJoins struct{ *csv.Catalog }

func (brokenJoins) Cast(context.Context, int) (string, error) { return "[{'name': ", nil }
func (brokenJoins) Keywords(_ context.Context, id int) (string, error) {
	return "", ports.ErrRowNotFound
}

func TestResolve_BrokenJoinsAreTolerated(t *testing.T) {
	r := resolver.New(brokenJoins{newCatalog(t)})

	res, err := r.Resolve(context.Background(), `"Inception"`)
	require.NoError(t, err)
	assert.Equal(t, resolver.KindResolved, res.Kind)
	assert.Empty(t, res.Cast)
	assert.Empty(t, res.Keywords)
	assert.NotEmpty(t, res.Genres[1])
}

func TestResolve_PythonLiteralGenres(t *testing.T) {
	meta := "title,genres\n" + `"Amélie","[{'id': 1, 'name': ""Rom' Com""}]"` + "\n"
	c, err := csv.Read(strings.NewReader(meta), strings.NewReader("keywords\n[]\n"), strings.NewReader("cast\n[]\n"))
	require.NoError(t, err)

	res, err := resolver.New(c).Resolve(context.Background(), `"amélie"`)
	require.NoError(t, err)
	require.Equal(t, resolver.KindResolved, res.Kind)
	assert.Equal(t, []string{"Rom' Com"}, res.Genres[0])
}
