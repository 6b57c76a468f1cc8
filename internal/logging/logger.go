package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
)

// New creates the application logger.
// It writes to Stderr so the transcript on Stdout stays clean.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
// It standardizes common keys (e.g., "error" -> "err").
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a configuration string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Hooks returns lifecycle hooks that trace the conversation at debug level.
func Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node entered", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node left", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnMacro: func(ctx context.Context, e *domain.MacroEvent) {
			attrs := []any{"session_id", e.SessionID, "node_id", e.NodeID, "macro", e.Macro, "outcome", e.Outcome}
			if e.Target != "" {
				attrs = append(attrs, "target", e.Target)
			}
			logger.DebugContext(ctx, "macro evaluated", attrs...)
		},
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn",
				"session_id", e.SessionID, "turn", e.Turn, "from", e.FromNodeID, "to", e.ToNodeID, "guard", e.Guard)
		},
	}
}

// Combine fans every event out to all hook sets.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeEnter != nil {
					s.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeLeave != nil {
					s.OnNodeLeave(ctx, e)
				}
			}
		},
		OnMacro: func(ctx context.Context, e *domain.MacroEvent) {
			for _, s := range sets {
				if s.OnMacro != nil {
					s.OnMacro(ctx, e)
				}
			}
		},
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			for _, s := range sets {
				if s.OnTurn != nil {
					s.OnTurn(ctx, e)
				}
			}
		},
	}
}
