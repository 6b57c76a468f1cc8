package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aretw0/teevee"
	httpadapter "github.com/aretw0/teevee/internal/adapters/http"
	mcpadapter "github.com/aretw0/teevee/internal/adapters/mcp"
	"github.com/aretw0/teevee/internal/presentation/tui"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/runner"
)

// RunOptions configures a conversation.
type RunOptions struct {
	SessionID string
	// Fresh discards any saved state of SessionID first.
	Fresh    bool
	Headless bool
	JSON     bool
	Input    io.Reader
	Output   io.Writer
}

// Run holds one conversation on the terminal (or NDJSON in JSON mode) and,
// when configured, serves the introspection endpoints meanwhile.
func Run(ctx context.Context, app *App, opts RunOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := app.Sessions.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("resetting session %s: %w", opts.SessionID, err)
		}
	}

	if addr := app.Config.MetricsAddr; addr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		defer func() {
			cancel()
			<-done
		}()
		h := introspectionHandler(app)
		go func() {
			defer close(done)
			if err := httpadapter.Serve(srvCtx, addr, h, app.Logger); err != nil {
				app.Logger.Error("introspection server failed", "addr", addr, "err", err)
			}
		}()
	}

	r := runner.NewRunner(runnerOptions(app, opts)...)
	_, err := r.Run(ctx, app.Engine, nil)
	if errors.Is(err, runner.ErrInterrupted) {
		return nil
	}
	return err
}

// Serve exposes the introspection endpoints of app until ctx is done.
func Serve(ctx context.Context, app *App, addr string) error {
	return httpadapter.Serve(ctx, addr, introspectionHandler(app), app.Logger)
}

// ServeMCP answers MCP requests on in and out until ctx is done or in
// closes. The logger must not write to out.
func ServeMCP(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	return mcpadapter.NewServer(mcpadapter.Config{
		Graph:     app.Engine,
		Sessions:  app.Sessions,
		Checks:    graphChecks(app.Macros),
		Redirects: macro.RedirectTargets(),
		Version:   strings.TrimSpace(teevee.Version),
		Logger:    app.Logger,
	}).ServeStdio(ctx, in, out)
}

func introspectionHandler(app *App) http.Handler {
	return httpadapter.NewHandler(httpadapter.Config{
		Graph:     app.Engine,
		Gatherer:  app.Registry,
		Redirects: macro.RedirectTargets(),
		Version:   strings.TrimSpace(teevee.Version),
		Logger:    app.Logger,
	})
}

func runnerOptions(app *App, opts RunOptions) []runner.Option {
	ro := []runner.Option{
		runner.WithSessions(app.Sessions),
		runner.WithSessionID(opts.SessionID),
		runner.WithLogger(app.Logger),
		runner.WithHeadless(opts.Headless || opts.JSON),
		// Headless callers own their process lifecycle.
		runner.WithSignals(!opts.Headless && !opts.JSON),
	}

	if opts.JSON {
		return append(ro, runner.WithInputHandler(runner.NewJSONHandler(opts.Input, opts.Output)))
	}

	textOpts := []runner.TextHandlerOption{runner.WithTextHandlerRenderer(tui.NewRenderer(opts.Output))}
	if opts.Headless {
		textOpts = append(textOpts, runner.WithPrompt(""))
	} else {
		ro = append(ro, runner.WithBanner(tui.BannerFor(opts.Output)))
	}
	return append(ro, runner.WithInputHandler(runner.NewTextHandler(opts.Input, opts.Output, textOpts...)))
}
