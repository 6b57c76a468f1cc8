package macro

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/resolver"
)

// Macro names of the interview library.
const (
	Name       = "NAME"
	MissedName = "MISSEDNAME"
	Movie      = "MOVIE"
	GetGenre   = "GETGENRE"
	Demonym    = "DEMONYM"
	Culture    = "CULTURE"
	Watched    = "WATCHED"
	Article    = "A"
	Actor      = "ACTOR"
)

// States the MOVIE macro can force the conversation into.
const (
	NoMovieState  = "nomovie"
	DontKnowState = "dontknow"
)

// RedirectTargets lists, per macro, the states it may redirect to. Graph
// validation uses it to make sure those states exist.
func RedirectTargets() map[string][]string {
	return map[string][]string{
		Movie: {NoMovieState, DontKnowState},
	}
}

// Fixed texts.
const (
	MissedNameText    = "I missed your name!"
	GenreFallbackText = "i haven't seen that one, but it sounds like a great pick! what's your favorite genre?"
	CastFallbackText  = "Did you like the cast?"
)

var genreTemplates = []string{
	"i love #GENRE movies like that! what's your favorite genre?",
	"no way! those #GENRE movies are my favorite!  what's your favorite genre?",
	"seems like you are a big fan of #GENRE movies, no?  what's your favorite genre?",
	"that's a #GENRE movie, right?  what's your favorite genre?",
}

// castWindow is how many leading cast entries ACTOR samples from.
const castWindow = 5

// EntityExtractor is the part of extract.Extractor the library needs.
type EntityExtractor interface {
	First(ctx context.Context, text, label string) (string, bool, error)
}

// TitleResolver is the part of resolver.Resolver the library needs.
type TitleResolver interface {
	Resolve(ctx context.Context, utterance string) (*resolver.Resolution, error)
}

// Deps are the collaborators of the interview macros.
type Deps struct {
	Extractor EntityExtractor
	Resolver  TitleResolver
	// Rand drives GETGENRE and ACTOR. A time-seeded source is used when nil.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// lockedRand serialises access to a *rand.Rand shared by every session.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}

type library struct {
	deps   Deps
	rng    *lockedRand
	logger *slog.Logger
}

// NewLibrary registers the interview macros on a new Registry.
func NewLibrary(deps Deps) *Registry {
	if deps.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		deps.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	lib := &library{deps: deps, rng: &lockedRand{r: deps.Rand}, logger: deps.Logger}
	if lib.logger == nil {
		lib.logger = slog.New(slog.DiscardHandler)
	}

	r := NewRegistry()
	r.Register(Name, Func(lib.name))
	r.Register(MissedName, Func(missedName))
	r.Register(Movie, Func(lib.movie))
	r.Register(GetGenre, Func(lib.getGenre))
	r.Register(Demonym, Func(lib.demonym))
	r.Register(Culture, Func(culture))
	r.Register(Watched, Func(watched))
	r.Register(Article, Func(article))
	r.Register(Actor, Func(lib.actor))
	return r
}

func (l *library) name(ctx context.Context, c *Call) domain.Outcome {
	if c.Vars.HasName() {
		return domain.Value(c.Vars.Name)
	}
	name, ok, err := l.deps.Extractor.First(ctx, c.Raw, domain.LabelPerson)
	if err != nil {
		l.logger.Warn("person extraction failed", "err", err)
		return domain.NotMatched()
	}
	if !ok {
		return domain.NotMatched()
	}
	c.Vars.Name = name
	return domain.Value(name)
}

func missedName(_ context.Context, c *Call) domain.Outcome {
	if c.Vars.HasName() {
		return domain.NotMatched()
	}
	return domain.Value(MissedNameText)
}

func (l *library) movie(ctx context.Context, c *Call) domain.Outcome {
	res, err := l.deps.Resolver.Resolve(ctx, c.Raw)
	if err != nil {
		l.logger.Error("title lookup failed", "err", err)
		out := domain.Redirect(NoMovieState)
		out.Reason = "lookup failed"
		return out
	}
	res.Apply(c.Vars)

	var out domain.Outcome
	switch res.Kind {
	case resolver.KindResolved:
		return domain.Matched()
	case resolver.KindNotFound:
		out = domain.Redirect(DontKnowState)
	default:
		out = domain.Redirect(NoMovieState)
	}
	out.Reason = res.Kind.String()
	return out
}

func (l *library) getGenre(_ context.Context, c *Call) domain.Outcome {
	genres := c.Vars.PickedGenres()
	if len(genres) == 0 {
		return domain.Value(GenreFallbackText)
	}
	tmpl := genreTemplates[l.rng.IntN(len(genreTemplates))]
	genre := strings.ToLower(genres[l.rng.IntN(len(genres))])
	return domain.Value(strings.ReplaceAll(tmpl, "#GENRE", genre))
}

func (l *library) demonym(ctx context.Context, c *Call) domain.Outcome {
	culture, ok, err := l.deps.Extractor.First(ctx, c.Raw, domain.LabelNORP)
	if err != nil {
		l.logger.Warn("norp extraction failed", "err", err)
		return domain.NotMatched()
	}
	if !ok {
		return domain.NotMatched()
	}
	c.Vars.Culture = culture
	return domain.Value(culture)
}

func culture(_ context.Context, c *Call) domain.Outcome {
	if !c.Vars.HasCulture() {
		return domain.Fatal("culture requested before a demonym was recorded")
	}
	return domain.Value(c.Vars.Culture)
}

func watched(_ context.Context, c *Call) domain.Outcome {
	if c.Vars.UserDescription == "" {
		return domain.NotMatched()
	}
	return domain.Value(c.Vars.UserDescription)
}

func article(_ context.Context, c *Call) domain.Outcome {
	if c.Vars.Once {
		return domain.Value("another")
	}
	c.Vars.Once = true
	return domain.Value("a")
}

func (l *library) actor(_ context.Context, c *Call) domain.Outcome {
	cast := c.Vars.Characters
	if len(cast) > castWindow {
		cast = cast[:castWindow]
	}
	if len(cast) < 2 {
		return domain.Value(CastFallbackText)
	}
	picks := l.rng.Perm(len(cast))[:2]
	better, worse := cast[picks[0]], cast[picks[1]]

	out := domain.Value(fmt.Sprintf("Did you like %s's performance?", strings.ToLower(better.Actor)))
	out.Reason = fmt.Sprintf("better=%s worse=%s", better.Actor, worse.Actor)
	return out
}
