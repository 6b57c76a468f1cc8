// Package lexicon is a gazetteer-based ports.EntityTagger. It recognises
// PERSON spans from a list of first names and introduction cues, and NORP
// spans from a list of demonyms and group names.
package lexicon

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
)

//go:embed default.yaml
var defaultLexicon []byte

// Lexicon is the YAML document the tagger is built from.
type Lexicon struct {
	Cues struct {
		Strong []string `yaml:"strong"`
		Weak   []string `yaml:"weak"`
	} `yaml:"cues"`
	Persons []string `yaml:"persons"`
	NORP    []string `yaml:"norp"`
}

// Tagger implements ports.EntityTagger. It is immutable after construction.
type Tagger struct {
	persons map[string]bool
	norp    map[string]bool
	strong  [][]string
	weak    [][]string
	maxNORP int
}

// Default returns a tagger built from the embedded lexicon.
func Default() *Tagger {
	t, err := Parse(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded default is invalid: %v", err))
	}
	return t
}

// LoadFile builds a tagger from a YAML file.
func LoadFile(path string) (*Tagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return Parse(data)
}

// Parse builds a tagger from YAML bytes.
func Parse(data []byte) (*Tagger, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return New(lex), nil
}

// New builds a tagger from an in-memory lexicon.
func New(lex Lexicon) *Tagger {
	t := &Tagger{
		persons: make(map[string]bool, len(lex.Persons)),
		norp:    make(map[string]bool, len(lex.NORP)),
	}
	for _, p := range lex.Persons {
		t.persons[strings.ToLower(strings.TrimSpace(p))] = true
	}
	for _, n := range lex.NORP {
		words := strings.Fields(strings.ToLower(n))
		if len(words) == 0 {
			continue
		}
		t.norp[strings.Join(words, " ")] = true
		t.maxNORP = max(t.maxNORP, len(words))
	}
	for _, c := range lex.Cues.Strong {
		if words := strings.Fields(strings.ToLower(c)); len(words) > 0 {
			t.strong = append(t.strong, words)
		}
	}
	for _, c := range lex.Cues.Weak {
		if words := strings.Fields(strings.ToLower(c)); len(words) > 0 {
			t.weak = append(t.weak, words)
		}
	}
	return t
}

type token struct {
	text  string
	lower string
	start int
}

func (t token) capitalized() bool {
	for _, r := range t.text {
		return unicode.IsUpper(r)
	}
	return false
}

func tokenize(text string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			w := strings.Trim(text[start:end], "'-")
			if w != "" {
				toks = append(toks, token{text: w, lower: strings.ToLower(w), start: start})
			}
			start = -1
		}
	}
	for i, r := range text {
		if unicode.IsLetter(r) || r == '\'' || r == '’' || r == '-' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	for i := range toks {
		toks[i].lower = strings.ReplaceAll(toks[i].lower, "’", "'")
	}
	return toks
}

// Tag returns PERSON and NORP entities ordered by position in text.
func (t *Tagger) Tag(_ context.Context, text string) ([]domain.Entity, error) {
	toks := tokenize(text)
	type span struct {
		start int
		ent   domain.Entity
	}
	var spans []span
	used := make([]bool, len(toks))

	// NORP first: a demonym is never part of a person name.
	for i := 0; i < len(toks); i++ {
		for n := min(t.maxNORP, len(toks)-i); n > 0; n-- {
			if !t.norp[joinLower(toks[i:i+n])] {
				continue
			}
			last := toks[i+n-1]
			spans = append(spans, span{toks[i].start, domain.Entity{
				Text:  text[toks[i].start : last.start+len(last.text)],
				Label: domain.LabelNORP,
			}})
			for j := i; j < i+n; j++ {
				used[j] = true
			}
			i += n - 1
			break
		}
	}

	for i := 0; i < len(toks); i++ {
		if used[i] || !t.isName(toks, i) {
			continue
		}
		end := i + 1
		if end < len(toks) && !used[end] && toks[end].capitalized() && toks[i].capitalized() {
			end++
		}
		last := toks[end-1]
		spans = append(spans, span{toks[i].start, domain.Entity{
			Text:  text[toks[i].start : last.start+len(last.text)],
			Label: domain.LabelPerson,
		}})
		for j := i; j < end; j++ {
			used[j] = true
		}
		i = end - 1
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	out := make([]domain.Entity, len(spans))
	for i, s := range spans {
		out[i] = s.ent
	}
	return out, nil
}

func (t *Tagger) isName(toks []token, i int) bool {
	if t.persons[toks[i].lower] {
		return true
	}
	if precededBy(toks, i, t.strong) {
		return true
	}
	return toks[i].capitalized() && precededBy(toks, i, t.weak)
}

func precededBy(toks []token, i int, cues [][]string) bool {
	for _, cue := range cues {
		if len(cue) > i {
			continue
		}
		match := true
		for k, w := range cue {
			if toks[i-len(cue)+k].lower != w {
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

func joinLower(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.lower
	}
	return strings.Join(parts, " ")
}

var _ ports.EntityTagger = (*Tagger)(nil)
