// Package resolver turns a user utterance that quotes a film title into a
// dataset record, together with the genre, keyword and cast data the
// conversation talks about afterwards.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/pylit"
)

// DefaultMaxResults is the largest match set still considered a resolution.
const DefaultMaxResults = 50

// Kind classifies a Resolution.
type Kind int

const (
	// KindNoQuote means the utterance contained no double-quoted text.
	KindNoQuote Kind = iota
	// KindNotFound means no title matched.
	KindNotFound
	// KindTooMany means more than MaxResults titles matched.
	KindTooMany
	// KindResolved means 1..MaxResults titles matched.
	KindResolved
)

func (k Kind) String() string {
	switch k {
	case KindNoQuote:
		return "no_quote"
	case KindNotFound:
		return "not_found"
	case KindTooMany:
		return "too_many"
	case KindResolved:
		return "resolved"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resolution is the result of Resolve. Only Kind and Description are set
// unless Kind is KindResolved.
type Resolution struct {
	Kind        Kind
	Description string
	Query       domain.TitleQuery
	Matches     int

	Results  []domain.MovieSummary
	PickID   int
	Genres   map[int][]string
	Keywords map[int][]string
	Cast     []domain.CastCredit
}

// Apply copies the resolution into the session variables.
func (r *Resolution) Apply(vars *domain.Variables) {
	if r.Kind == KindNoQuote {
		return
	}
	vars.UserDescription = r.Description
	if r.Kind != KindResolved {
		return
	}
	vars.Results = r.Results
	vars.PickID = r.PickID
	vars.Picked = true
	vars.Genres = r.Genres
	vars.Keywords = r.Keywords
	vars.Characters = r.Cast
}

var quoted = regexp.MustCompile(`"([^"]+)"`)

// Resolver queries a MovieCatalog.
type Resolver struct {
	catalog    ports.MovieCatalog
	maxResults int
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxResults overrides DefaultMaxResults.
func WithMaxResults(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// WithLogger sets the logger used for skipped rows.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver over catalog.
func New(catalog ports.MovieCatalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:    catalog,
		maxResults: DefaultMaxResults,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the first double-quoted fragment of utterance. Errors are
// reserved for catalog failures; every user-input problem is a Kind.
func (r *Resolver) Resolve(ctx context.Context, utterance string) (*Resolution, error) {
	normalized := domain.NormalizeText(utterance)
	m := quoted.FindStringSubmatch(normalized)
	if m == nil {
		return &Resolution{Kind: KindNoQuote}, nil
	}

	res := &Resolution{
		Description: rawCapture(utterance, m[1]),
		Query:       domain.NewTitleQuery(m[1]),
	}

	rows, err := r.catalog.FindTitles(ctx, res.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to search titles: %w", err)
	}
	res.Matches = len(rows)
	switch {
	case len(rows) == 0:
		res.Kind = KindNotFound
		return res, nil
	case len(rows) > r.maxResults:
		res.Kind = KindTooMany
		return res, nil
	}

	res.Kind = KindResolved
	res.PickID = rows[0].ID
	res.Results = make([]domain.MovieSummary, len(rows))
	res.Genres = make(map[int][]string, len(rows))
	res.Keywords = make(map[int][]string, len(rows))

	for i, row := range rows {
		res.Results[i] = domain.MovieSummary{ID: row.ID, Title: row.Title}
		res.Genres[row.ID] = r.genres(row)
		if kw, ok := r.keywords(ctx, row.ID); ok {
			res.Keywords[row.ID] = kw
		}
	}
	res.Cast = r.cast(ctx, res.PickID)
	return res, nil
}

// rawCapture returns the quoted text of the raw utterance when it corresponds
// to the normalized capture, so the user's own spelling can be echoed back.
func rawCapture(utterance, normalized string) string {
	if m := quoted.FindStringSubmatch(utterance); m != nil && domain.NormalizeText(m[1]) == normalized {
		return m[1]
	}
	return normalized
}

type named struct {
	Name string `json:"name"`
}

func namesOf(items []named) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func (r *Resolver) genres(row domain.MovieRow) []string {
	var items []named
	if err := pylit.LooseJSON(row.Genres, &items); err == nil {
		return namesOf(items)
	}
	v, err := pylit.Parse(row.Genres)
	if err == nil {
		var names []string
		if names, err = pylit.Names(v); err == nil {
			return names
		}
	}
	r.logger.Debug("unparseable genres", "row", row.ID, "err", err)
	return nil
}

func (r *Resolver) keywords(ctx context.Context, rowID int) ([]string, bool) {
	raw, err := r.catalog.Keywords(ctx, rowID)
	if err != nil {
		r.logger.Debug("keywords unavailable", "row", rowID, "err", err)
		return nil, false
	}
	var items []named
	if err := pylit.LooseJSON(raw, &items); err != nil {
		r.logger.Debug("keywords omitted", "row", rowID, "err", err)
		return nil, false
	}
	return namesOf(items), true
}

func (r *Resolver) cast(ctx context.Context, rowID int) []domain.CastCredit {
	raw, err := r.catalog.Cast(ctx, rowID)
	if err != nil {
		r.logger.Debug("cast unavailable", "row", rowID, "err", err)
		return nil
	}
	v, err := pylit.Parse(raw)
	if err != nil {
		r.logger.Debug("unparseable cast", "row", rowID, "err", err)
		return nil
	}
	list, _ := v.([]any)
	out := make([]domain.CastCredit, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		actor, _ := rec["name"].(string)
		character, _ := rec["character"].(string)
		out = append(out, domain.CastCredit{Actor: actor, Character: character})
	}
	return out
}
