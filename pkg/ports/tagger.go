package ports

import (
	"context"

	"github.com/aretw0/teevee/pkg/domain"
)

// EntityTagger is the natural-language entity recognizer.
// Implementations must return an empty slice, not an error, when nothing is recognized.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]domain.Entity, error)
}
