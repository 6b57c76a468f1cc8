package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/teevee/internal/presentation/graph"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GraphSource is the part of the engine the introspection endpoints read.
type GraphSource interface {
	Inspect() ([]domain.Node, error)
	EntryNodeID() string
}

// Config wires the handler.
type Config struct {
	Graph     GraphSource
	Gatherer  prometheus.Gatherer
	Redirects map[string][]string
	Version   string
	Logger    *slog.Logger
}

// NewHandler serves /healthz, /info, /graph (Mermaid), /graph.json and
// /metrics. It carries no conversation endpoints.
func NewHandler(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, cfg.Logger, map[string]string{"status": "ok"})
	})
	r.Get("/info", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, cfg.Logger, map[string]string{"app": "teevee", "version": cfg.Version})
	})

	if cfg.Graph != nil {
		r.Get("/graph", func(w http.ResponseWriter, _ *http.Request) {
			nodes, err := cfg.Graph.Inspect()
			if err != nil {
				http.Error(w, "inspect error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(graph.GenerateMermaid(nodes, graph.Options{
				Entry:     cfg.Graph.EntryNodeID(),
				Redirects: cfg.Redirects,
			})))
		})
		r.Get("/graph.json", func(w http.ResponseWriter, _ *http.Request) {
			nodes, err := cfg.Graph.Inspect()
			if err != nil {
				http.Error(w, "inspect error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, cfg.Logger, nodes)
		})
	}

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "err", err)
	}
}

// Serve runs the handler on addr until ctx is done, then shuts down.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("introspection server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
