package macro_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	calls int
	spans map[string]string
	err   error
}

func (f *fakeExtractor) First(_ context.Context, _ string, label string) (string, bool, error) {
	f.calls++
	s, ok := f.spans[label]
	return s, ok, f.err
}

func newLibrary(t *testing.T, ex macro.EntityExtractor) *macro.Registry {
	t.Helper()
	cat, err := csv.Read(
		strings.NewReader(ports.CatalogFixture.Metadata),
		strings.NewReader(ports.CatalogFixture.Keywords),
		strings.NewReader(ports.CatalogFixture.Credits),
	)
	require.NoError(t, err)
	if ex == nil {
		ex = &fakeExtractor{}
	}
	return macro.NewLibrary(macro.Deps{
		Extractor: ex,
		Resolver:  resolver.New(cat),
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
}

func run(t *testing.T, lib *macro.Registry, name, utterance string, vars *domain.Variables) domain.Outcome {
	t.Helper()
	out, err := lib.Run(context.Background(), name, &macro.Call{
		Utterance: strings.ToLower(utterance),
		Raw:       utterance,
		Vars:      vars,
	})
	require.NoError(t, err)
	return out
}

func TestLibrary_Names(t *testing.T) {
	lib := newLibrary(t, nil)
	assert.Equal(t, []string{"A", "ACTOR", "CULTURE", "DEMONYM", "GETGENRE", "MISSEDNAME", "MOVIE", "NAME", "WATCHED"}, lib.Names())

	_, err := lib.Run(context.Background(), "NOPE", &macro.Call{})
	assert.ErrorIs(t, err, macro.ErrUnknownMacro)

	_, ok := lib.Lookup("name")
	assert.True(t, ok, "lookup is case-insensitive")
}

func TestName_IsIdempotent(t *testing.T) {
	ex := &fakeExtractor{spans: map[string]string{domain.LabelPerson: "Maria"}}
	lib := newLibrary(t, ex)
	vars := domain.NewVariables()

	assert.Equal(t, domain.Value("Maria"), run(t, lib, macro.Name, "i'm Maria", &vars))
	assert.Equal(t, "Maria", vars.Name)

	ex.spans[domain.LabelPerson] = "Someone Else"
	assert.Equal(t, domain.Value("Maria"), run(t, lib, macro.Name, "i'm someone else", &vars))
	assert.Equal(t, 1, ex.calls, "stored name short-circuits the tagger")
}

func TestName_NotRecognized(t *testing.T) {
	lib := newLibrary(t, &fakeExtractor{})
	vars := domain.NewVariables()

	assert.Equal(t, domain.NotMatched(), run(t, lib, macro.Name, "hello", &vars))
	assert.False(t, vars.HasName())

	lib = newLibrary(t, &fakeExtractor{err: errors.New("down")})
	assert.Equal(t, domain.NotMatched(), run(t, lib, macro.Name, "i'm Bob", &vars))
}

func TestMissedName(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()

	assert.Equal(t, domain.Value(macro.MissedNameText), run(t, lib, macro.MissedName, "", &vars))
	vars.Name = "Ada"
	assert.Equal(t, domain.NotMatched(), run(t, lib, macro.MissedName, "", &vars))
}

func TestMovie_Outcomes(t *testing.T) {
	lib := newLibrary(t, nil)

	tests := []struct {
		utterance string
		kind      domain.OutcomeKind
		target    string
	}{
		{"i watched inception", domain.OutcomeRedirect, macro.NoMovieState},
		{`i watched "Some Unknown Film"`, domain.OutcomeRedirect, macro.DontKnowState},
		{`i watched "Inception"`, domain.OutcomeMatched, ""},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			vars := domain.NewVariables()
			out := run(t, lib, macro.Movie, tt.utterance, &vars)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Equal(t, tt.target, out.Target)
		})
	}
}

func TestMovie_PopulatesVariables(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()

	out := run(t, lib, macro.Movie, `I saw "The Dark Knight" yesterday`, &vars)
	require.True(t, out.Succeeded())
	assert.True(t, vars.Picked)
	assert.Equal(t, 2, vars.PickID)
	assert.Equal(t, "The Dark Knight", vars.UserDescription)
	assert.Len(t, vars.Results, 2)
	assert.Equal(t, []string{"Drama", "Crime"}, vars.PickedGenres())

	assert.Equal(t, domain.Value("The Dark Knight"), run(t, lib, macro.Watched, "", &vars))
}

func TestGetGenre(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()

	assert.Equal(t, domain.Value(macro.GenreFallbackText), run(t, lib, macro.GetGenre, "", &vars))

	vars.Picked = true
	vars.PickID = 7
	vars.Genres[7] = []string{"Science Fiction", "Action"}
	for range 20 {
		out := run(t, lib, macro.GetGenre, "", &vars)
		require.Equal(t, domain.OutcomeValue, out.Kind)
		assert.NotContains(t, out.Text, "#GENRE")
		assert.True(t, strings.Contains(out.Text, "science fiction") || strings.Contains(out.Text, "action"), out.Text)
		assert.True(t, strings.HasSuffix(out.Text, "what's your favorite genre?"), out.Text)
	}
}

func TestDemonymAndCulture(t *testing.T) {
	ex := &fakeExtractor{spans: map[string]string{}}
	lib := newLibrary(t, ex)
	vars := domain.NewVariables()

	assert.Equal(t, domain.NotMatched(), run(t, lib, macro.Demonym, "it was fine", &vars))

	out := run(t, lib, macro.Culture, "", &vars)
	assert.Equal(t, domain.OutcomeFatal, out.Kind, "culture before demonym is a graph error")

	ex.spans[domain.LabelNORP] = "Korean"
	assert.Equal(t, domain.Value("Korean"), run(t, lib, macro.Demonym, "it's a Korean film", &vars))
	assert.Equal(t, domain.Value("Korean"), run(t, lib, macro.Culture, "", &vars))
}

func TestWatched_Empty(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()
	assert.Equal(t, domain.NotMatched(), run(t, lib, macro.Watched, "", &vars))
}

func TestArticle(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()

	assert.Equal(t, domain.Value("a"), run(t, lib, macro.Article, "", &vars))
	assert.True(t, vars.Once)
	assert.Equal(t, domain.Value("another"), run(t, lib, macro.Article, "", &vars))
	assert.Equal(t, domain.Value("another"), run(t, lib, macro.Article, "", &vars))
}

func TestActor(t *testing.T) {
	lib := newLibrary(t, nil)
	vars := domain.NewVariables()

	assert.Equal(t, domain.Value(macro.CastFallbackText), run(t, lib, macro.Actor, "", &vars))
	vars.Characters = []domain.CastCredit{{Actor: "Solo Act", Character: "Self"}}
	assert.Equal(t, domain.Value(macro.CastFallbackText), run(t, lib, macro.Actor, "", &vars))

	vars.Characters = []domain.CastCredit{
		{Actor: "A One", Character: "1"},
		{Actor: "B Two", Character: "2"},
		{Actor: "C Three", Character: "3"},
		{Actor: "D Four", Character: "4"},
		{Actor: "E Five", Character: "5"},
		{Actor: "F Six", Character: "6"},
	}
	allowed := map[string]bool{}
	for _, c := range vars.Characters[:5] {
		allowed["Did you like "+strings.ToLower(c.Actor)+"'s performance?"] = true
	}
	for range 50 {
		out := run(t, lib, macro.Actor, "", &vars)
		require.Equal(t, domain.OutcomeValue, out.Kind)
		assert.True(t, allowed[out.Text], "only the first five cast entries are sampled: %s", out.Text)
	}
}
