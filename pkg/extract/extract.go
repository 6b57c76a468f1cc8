// Package extract narrows the output of an entity tagger down to the spans of
// a single category.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/teevee/pkg/ports"
)

// Extractor wraps a tagger. The zero value is not usable; use New.
type Extractor struct {
	tagger ports.EntityTagger
}

// New creates an Extractor bound to tagger.
func New(tagger ports.EntityTagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// Extract returns the spans labelled label, in the order the tagger reported
// them. Blank text yields an empty slice without calling the tagger.
func (e *Extractor) Extract(ctx context.Context, text, label string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	ents, err := e.tagger.Tag(ctx, text)
	if err != nil {
		return []string{}, fmt.Errorf("entity tagger failed: %w", err)
	}
	spans := []string{}
	for _, ent := range ents {
		if ent.Label == label {
			spans = append(spans, ent.Text)
		}
	}
	return spans, nil
}

// First returns the first span of label, if any.
func (e *Extractor) First(ctx context.Context, text, label string) (string, bool, error) {
	spans, err := e.Extract(ctx, text, label)
	if err != nil || len(spans) == 0 {
		return "", false, err
	}
	return spans[0], true, nil
}
