// Package ontology answers "does this utterance mention something of category
// X" against a hierarchical taxonomy.
//
// The document layout is the one used by emora-style knowledge bases:
//
//	ontology:
//	  genre: [scifi, horror]
//	  scifi: [science fiction, sci-fi]
//
// A list entry that is itself a key is a sub-category, anything else is a
// term. yaml.v3 reads both the YAML and the JSON form.
package ontology

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/teevee/pkg/ports"
)

//go:embed default.yaml
var defaultOntology []byte

type document struct {
	Ontology map[string][]string `yaml:"ontology" json:"ontology"`
}

// Ontology is an immutable taxonomy with precomputed closures.
type Ontology struct {
	children map[string][]string
	// closure maps a category to the token sequences of every descendant.
	closure map[string][][]string
}

// Default returns the embedded genre taxonomy.
func Default() *Ontology {
	o, err := Parse(defaultOntology)
	if err != nil {
		panic(fmt.Sprintf("ontology: embedded default is invalid: %v", err))
	}
	return o
}

// LoadFile reads a taxonomy from a YAML or JSON file.
func LoadFile(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology: %w", err)
	}
	return Parse(data)
}

// Parse reads a taxonomy document.
func Parse(data []byte) (*Ontology, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ontology: %w", err)
	}
	if len(doc.Ontology) == 0 {
		return nil, fmt.Errorf("failed to parse ontology: no %q section", "ontology")
	}
	return New(doc.Ontology), nil
}

// New builds an Ontology from a category → children map.
func New(children map[string][]string) *Ontology {
	o := &Ontology{
		children: make(map[string][]string, len(children)),
		closure:  make(map[string][][]string, len(children)),
	}
	for k, v := range children {
		o.children[strings.ToLower(k)] = v
	}
	for k := range o.children {
		seen := map[string]bool{k: true}
		var terms [][]string
		o.collect(k, seen, &terms)
		o.closure[k] = terms
	}
	return o
}

func (o *Ontology) collect(category string, seen map[string]bool, terms *[][]string) {
	for _, child := range o.children[category] {
		key := strings.ToLower(child)
		if toks := tokens(child); len(toks) > 0 {
			*terms = append(*terms, toks)
		}
		if _, isCategory := o.children[key]; isCategory && !seen[key] {
			seen[key] = true
			o.collect(key, seen, terms)
		}
	}
}

// Categories lists the known categories, sorted.
func (o *Ontology) Categories() []string {
	out := make([]string, 0, len(o.children))
	for k := range o.children {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether category is defined.
func (o *Ontology) Has(category string) bool {
	_, ok := o.children[strings.ToLower(category)]
	return ok
}

// Contains reports whether any descendant term of category occurs in
// utterance as a whole-word n-gram. Unknown categories never match.
func (o *Ontology) Contains(category, utterance string) bool {
	terms := o.closure[strings.ToLower(category)]
	if len(terms) == 0 {
		return false
	}
	words := tokens(utterance)
	for _, term := range terms {
		if containsSeq(words, term) {
			return true
		}
	}
	return false
}

// tokens lowercases s and splits it on everything except letters, digits,
// hyphens and apostrophes.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

func containsSeq(words, seq []string) bool {
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j, w := range seq {
			if words[i+j] != w {
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

var _ ports.Ontology = (*Ontology)(nil)
