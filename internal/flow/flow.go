// Package flow ships the movie interview graph and turns flow documents into
// graph loaders.
package flow

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/aretw0/teevee/internal/adapters/loam"
	"github.com/aretw0/teevee/internal/compiler"
	"github.com/aretw0/teevee/pkg/adapters/memory"
)

//go:embed movie.yaml
var movieFlow []byte

// Source returns the embedded flow document.
func Source() []byte {
	return movieFlow
}

// Load compiles the flow at path, or the embedded interview when path is
// empty. A directory is read as one document per state.
func Load(path string) (*compiler.Flow, error) {
	if path == "" {
		return compiler.LoadFlow(movieFlow)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow: %w", err)
	}
	if info.IsDir() {
		return loam.LoadFlow(context.Background(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow: %w", err)
	}
	return compiler.LoadFlow(data)
}

// NewLoader serves the nodes of a compiled flow.
func NewLoader(f *compiler.Flow) (*memory.Loader, error) {
	return memory.NewFromNodes(f.Nodes...)
}
