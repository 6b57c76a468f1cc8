package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/teevee/internal/config"
	"github.com/aretw0/teevee/internal/logging"
	"github.com/aretw0/teevee/internal/presentation/graph"
	"github.com/aretw0/teevee/internal/validator"
	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/adapters/sqlite"
	"github.com/aretw0/teevee/pkg/macro"
)

// Graph writes the Mermaid diagram of the configured flow. With a sessionID
// the visited and current nodes of that session are highlighted.
func Graph(ctx context.Context, w io.Writer, cfg *config.Config, sessionID string) error {
	f, err := LoadFlow(cfg)
	if err != nil {
		return err
	}
	opts := graph.Options{Entry: f.Entry, Redirects: macro.RedirectTargets()}

	if sessionID != "" {
		store, _, closer, err := OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		state, err := store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", sessionID, err)
		}
		opts.Overlay = &graph.GraphOverlay{VisitedNodes: state.History, CurrentNode: state.CurrentNodeID}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(f.Nodes, opts))
	return err
}

// Validate checks the configured flow against the macro library. Warnings
// are printed but do not fail.
func Validate(w io.Writer, cfg *config.Config) error {
	f, err := LoadFlow(cfg)
	if err != nil {
		return err
	}
	report := validator.ValidateGraph(f.Nodes, f.Entry,
		validator.WithMacros(macro.NewLibrary(macro.Deps{}).Names()),
		validator.WithRedirects(macro.RedirectTargets()),
	)
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Flow is valid: %d nodes, entry %q\n", len(f.Nodes), f.Entry)
	return nil
}

// Import (re)builds the SQLite catalog from the CSV dataset.
func Import(ctx context.Context, cfg *config.Config, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	src, err := csv.Load(cfg.DataDir)
	if err != nil {
		return 0, err
	}
	db, err := sqlite.Open(cfg.DBPath, sqlite.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.Import(ctx, src)
}

// ListSessions returns the sorted ids of the stored sessions.
func ListSessions(ctx context.Context, cfg *config.Config) ([]string, error) {
	store, _, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	ids, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// ResetSessions deletes the given sessions.
func ResetSessions(ctx context.Context, cfg *config.Config, ids ...string) error {
	store, _, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("removing %s: %w", id, err)
		}
	}
	return nil
}

// InspectSession writes the stored state of a session as indented JSON.
func InspectSession(ctx context.Context, w io.Writer, cfg *config.Config, id string) error {
	store, _, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", id, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}
