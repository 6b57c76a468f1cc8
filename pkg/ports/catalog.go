package ports

import (
	"context"
	"errors"

	"github.com/aretw0/teevee/pkg/domain"
)

// ErrRowNotFound is returned when a joined table has no row for a row identity.
var ErrRowNotFound = errors.New("row not found")

// MovieCatalog is the read-only film dataset. The metadata, keywords and cast
// tables share a row identity.
type MovieCatalog interface {
	// FindTitles returns the metadata rows matching q, in dataset order.
	FindTitles(ctx context.Context, q domain.TitleQuery) ([]domain.MovieRow, error)

	// Keywords returns the raw keyword field of a row.
	Keywords(ctx context.Context, rowID int) (string, error)

	// Cast returns the raw cast field of a row.
	Cast(ctx context.Context, rowID int) (string, error)
}

// Ontology answers membership questions against the knowledge base.
type Ontology interface {
	// Contains reports whether the utterance mentions a term of category.
	Contains(category, utterance string) bool
}
