package testutils

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/adapters/lexicon"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/extract"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/resolver"
)

// SetupDataDir writes the catalog fixture CSV files into a temporary
// directory and returns its absolute path.
func SetupDataDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	files := map[string]string{
		csv.MetadataFile: ports.CatalogFixture.Metadata,
		csv.KeywordsFile: ports.CatalogFixture.Keywords,
		csv.CreditsFile:  ports.CatalogFixture.Credits,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

// FixtureCatalog returns the catalog fixture loaded in memory.
func FixtureCatalog(t *testing.T) *csv.Catalog {
	t.Helper()
	c, err := csv.Read(
		strings.NewReader(ports.CatalogFixture.Metadata),
		strings.NewReader(ports.CatalogFixture.Keywords),
		strings.NewReader(ports.CatalogFixture.Credits),
	)
	require.NoError(t, err)
	return c
}

// FakeTagger returns canned entities per exact input text and counts calls.
// Texts without an entry yield no entities.
type FakeTagger struct {
	mu       sync.Mutex
	Entities map[string][]domain.Entity
	Calls    int
}

// NewFakeTagger creates an empty FakeTagger.
func NewFakeTagger() *FakeTagger {
	return &FakeTagger{Entities: make(map[string][]domain.Entity)}
}

// On registers the entities returned for text.
func (f *FakeTagger) On(text string, ents ...domain.Entity) *FakeTagger {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entities[text] = ents
	return f
}

// Tag implements ports.EntityTagger.
func (f *FakeTagger) Tag(_ context.Context, text string) ([]domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Entities[text], nil
}

// Library builds the interview macros over the fixture catalog. A nil tagger
// means the built-in lexicon.
func Library(t *testing.T, tagger ports.EntityTagger) *macro.Registry {
	t.Helper()
	if tagger == nil {
		tagger = lexicon.Default()
	}
	return macro.NewLibrary(macro.Deps{
		Extractor: extract.New(tagger),
		Resolver:  resolver.New(FixtureCatalog(t)),
		Rand:      rand.New(rand.NewPCG(7, 11)),
	})
}
