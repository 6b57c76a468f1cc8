package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/teevee/internal/logging"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/session"
)

// ErrInterrupted is returned when a signal ended the conversation. The
// partial state is still returned and persisted.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the conversation loop over an IOHandler.
type Runner struct {
	// Handler is the IO strategy. Defaults to a TextHandler on Input/Output.
	Handler IOHandler

	// Sessions persists the state after every turn. Nil keeps the session
	// ephemeral.
	Sessions  *session.Manager
	SessionID string

	Logger   *slog.Logger
	Headless bool
	Signals  bool
	Banner   string

	// Input, Output and Renderer configure the default TextHandler.
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
}

// NewRunner creates a Runner on Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the conversation until the terminal state, an exit command,
// the end of input or an interrupt, and returns the last state.
//
// When state is nil the session is loaded from Sessions, or started on the
// engine. An invariant violation renders the abort notice and is returned
// wrapped, together with the aborted state.
func (r *Runner) Run(ctx context.Context, engine ports.DialogueEngine, state *domain.State) (*domain.State, error) {
	handler := r.resolveHandler()

	var signals *SignalManager
	if r.Signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	state, err := r.resolveInitialState(ctx, engine, state)
	if err != nil {
		return nil, err
	}

	if r.Banner != "" && !r.Headless {
		if tw, ok := handler.(*TextHandler); ok {
			fmt.Fprintln(tw.Writer, r.Banner)
		}
	}

	for {
		actions, done, err := engine.Render(ctx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}
		if _, err := handler.Output(ctx, actions); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
		if done {
			r.Logger.Debug("conversation finished", "session_id", state.SessionID, "status", state.Status)
			return state, nil
		}

		utterance, err := handler.Input(ctx)
		if err != nil {
			return r.stopOnInput(ctx, signals, handler, state, err)
		}
		if isExitCommand(utterance) {
			r.Logger.Debug("exit requested", "session_id", state.SessionID)
			return state, nil
		}

		next, err := engine.Navigate(ctx, state, utterance)
		if err != nil {
			var inv *domain.InvariantError
			if errors.As(err, &inv) && next != nil {
				return r.abort(ctx, engine, handler, next, err)
			}
			if errors.Is(err, domain.ErrSessionTerminated) {
				return state, nil
			}
			return state, fmt.Errorf("navigation error: %w", err)
		}

		if err := r.save(ctx, next); err != nil {
			return next, fmt.Errorf("critical persistence error: %w", err)
		}
		state = next
	}
}

func (r *Runner) stopOnInput(ctx context.Context, signals *SignalManager, handler IOHandler, state *domain.State, err error) (*domain.State, error) {
	interrupted := ctx.Err() != nil || (signals != nil && signals.Interrupted())
	if errors.Is(err, io.EOF) && !interrupted {
		return state, nil
	}
	if interrupted {
		if !r.Headless {
			_ = handler.SystemOutput(context.Background(), "interrupted, see you next time!")
		}
		return state, ErrInterrupted
	}
	return state, fmt.Errorf("input error: %w", err)
}

// abort shows the abort notice and keeps the aborted state for inspection.
func (r *Runner) abort(ctx context.Context, engine ports.DialogueEngine, handler IOHandler, state *domain.State, cause error) (*domain.State, error) {
	r.Logger.Error("conversation aborted", "session_id", state.SessionID, "err", cause)
	if actions, _, err := engine.Render(ctx, state); err == nil {
		_, _ = handler.Output(ctx, actions)
	}
	if err := r.save(ctx, state); err != nil {
		r.Logger.Warn("failed to persist aborted session", "session_id", state.SessionID, "err", err)
	}
	return state, fmt.Errorf("session aborted: %w", cause)
}

func (r *Runner) save(ctx context.Context, state *domain.State) error {
	if r.Sessions == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Sessions.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "node_id", state.CurrentNodeID)
	return nil
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}

func (r *Runner) resolveInitialState(ctx context.Context, engine ports.DialogueEngine, initial *domain.State) (*domain.State, error) {
	if initial != nil {
		return initial, nil
	}
	if r.Sessions != nil && r.SessionID != "" {
		state, created, err := r.Sessions.LoadOrStart(ctx, r.SessionID, engine.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
		r.Logger.Debug("session ready", "session_id", r.SessionID, "resumed", !created, "node_id", state.CurrentNodeID)
		return state, nil
	}
	state, err := engine.Start(ctx, r.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	return state, nil
}

func isExitCommand(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exit", "quit":
		return true
	}
	return false
}
