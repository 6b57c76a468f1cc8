// Package loam reads a flow kept as a directory of documents, one state per
// file, through a read-only Loam repository.
//
// A state file carries its branches in the front matter and its prompt in
// the body:
//
//	---
//	branches:
//	  - when: "#NAME"
//	    say: "{{NAME}}-- what a beautiful name!"
//	    to: getmovie
//	  - when: error
//	    to: start
//	---
//	nice to meet you! what's your name?
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/teevee/internal/compiler"
	"github.com/aretw0/teevee/internal/dto"
)

// Repository is the part of a typed Loam repository the flow reader needs.
type Repository = *loam.TypedRepository[dto.StateMetadata]

// Open initializes a strict, read-only repository at dir. The engine never
// writes the graph.
func Open(dir string) (Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid flow directory: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loam.NewTypedRepository[dto.StateMetadata](repo), nil
}

// LoadFlow compiles every state document of dir.
func LoadFlow(ctx context.Context, dir string) (*compiler.Flow, error) {
	repo, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return Compile(ctx, repo)
}

// Compile reads the states of repo. File names give state ids unless the
// front matter sets `id`; a missing `prompt` is taken from the body. The
// conversation begins at the `start` state.
func Compile(ctx context.Context, repo Repository) (*compiler.Flow, error) {
	docs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	states := make(map[string]dto.StateMetadata, len(docs))
	sources := make(map[string]string, len(docs))
	for _, listed := range docs {
		fileID := trimExtension(listed.ID)
		doc, err := repo.Get(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", fileID, err)
		}
		meta := doc.Data
		id := fileID
		if meta.ID != "" {
			id = trimExtension(meta.ID)
		}
		if prev, ok := sources[id]; ok {
			return nil, fmt.Errorf("collision detected: state '%s' is defined in both '%s' and '%s'", id, prev, listed.ID)
		}
		sources[id] = listed.ID

		if meta.Prompt == "" {
			meta.Prompt = strings.TrimSpace(doc.Content)
		}
		meta.ID = ""
		states[id] = meta
	}
	return compiler.Compile("", states)
}

func trimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}
