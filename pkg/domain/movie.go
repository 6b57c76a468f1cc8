package domain

import "strings"

// MovieRow is a raw metadata row as returned by a catalog.
type MovieRow struct {
	// ID is the row identity shared by the metadata, keywords and cast tables.
	ID int `json:"id"`
	// Title is the title as stored in the dataset.
	Title string `json:"title"`
	// NormalizedTitle is the title after NormalizeText.
	NormalizedTitle string `json:"normalized_title"`
	// Genres is the loosely JSON-encoded genre list.
	Genres string `json:"genres"`
}

// MovieSummary identifies a record in a result set.
type MovieSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// CastCredit is one (actor, character) pair, in billing order.
type CastCredit struct {
	Actor     string `json:"actor"`
	Character string `json:"character"`
}

var textNormalizer = strings.NewReplacer(",", "", ".", "", ":", "")

// NormalizeText lower-cases s and strips the characters ',', '.' and ':'.
// Utterances and titles go through the same normalization.
func NormalizeText(s string) string {
	return textNormalizer.Replace(strings.ToLower(s))
}

// TitleQuery is a set of filter words taken from a quoted fragment.
type TitleQuery struct {
	Tokens []string
}

// NewTitleQuery splits a normalized fragment on whitespace.
func NewTitleQuery(fragment string) TitleQuery {
	return TitleQuery{Tokens: strings.Fields(fragment)}
}

// Exact reports whether the query requires title equality.
func (q TitleQuery) Exact() bool {
	return len(q.Tokens) == 1
}

// Matches applies the title rule: a single token must equal the title,
// several tokens must all occur somewhere in it. A query without tokens
// matches every title.
func (q TitleQuery) Matches(normalizedTitle string) bool {
	if q.Exact() {
		return normalizedTitle == q.Tokens[0]
	}
	for _, tok := range q.Tokens {
		if !strings.Contains(normalizedTitle, tok) {
			return false
		}
	}
	return true
}
