package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/teevee"
	"github.com/aretw0/teevee/internal/adapters/file"
	"github.com/aretw0/teevee/internal/compiler"
	"github.com/aretw0/teevee/internal/config"
	"github.com/aretw0/teevee/internal/flow"
	"github.com/aretw0/teevee/internal/logging"
	"github.com/aretw0/teevee/internal/validator"
	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/adapters/lexicon"
	"github.com/aretw0/teevee/pkg/adapters/memory"
	"github.com/aretw0/teevee/pkg/adapters/nerhttp"
	"github.com/aretw0/teevee/pkg/adapters/redis"
	"github.com/aretw0/teevee/pkg/adapters/sqlite"
	"github.com/aretw0/teevee/pkg/extract"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/observability"
	"github.com/aretw0/teevee/pkg/ontology"
	"github.com/aretw0/teevee/pkg/persistence/middleware"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/resolver"
	"github.com/aretw0/teevee/pkg/session"
)

// App is a fully wired bot: catalog, tagger, macros, engine and sessions.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Flow     *compiler.Flow
	Engine   *teevee.Engine
	Macros   *macro.Registry
	Sessions *session.Manager
	Registry *prometheus.Registry

	closers []io.Closer
}

// NewLogger writes to w at the configured level, or at debug when forced.
func NewLogger(w io.Writer, cfg *config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.NewWithWriter(w, slog.LevelDebug), nil
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level), nil
}

// NewApp builds every collaborator named by cfg. The flow is validated
// against the macro library before the engine is returned.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	built := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			built.Close()
		}
	}()
	app = built

	if app.Flow, err = LoadFlow(cfg); err != nil {
		return nil, err
	}

	catalog, err := app.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	tagger, err := newTagger(cfg, logger)
	if err != nil {
		return nil, err
	}
	onto, err := loadOntology(cfg)
	if err != nil {
		return nil, err
	}

	app.Macros = macro.NewLibrary(macro.Deps{
		Extractor: extract.New(tagger),
		Resolver:  resolver.New(catalog, resolver.WithMaxResults(cfg.MaxResults), resolver.WithLogger(logger)),
		Rand:      newRand(cfg.Seed),
		Logger:    logger,
	})
	if err := validator.Check(app.Flow.Nodes, app.Flow.Entry, graphChecks(app.Macros)...); err != nil {
		return nil, err
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector())
	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, err
	}

	loader, err := flow.NewLoader(app.Flow)
	if err != nil {
		return nil, err
	}
	app.Engine, err = teevee.New(
		teevee.WithLoader(loader),
		teevee.WithEntryNode(app.Flow.Entry),
		teevee.WithMacros(app.Macros),
		teevee.WithOntology(onto),
		teevee.WithLifecycleHooks(logging.Combine(logging.Hooks(logger), metrics.Hooks())),
		teevee.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	store, locker, closer, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, opts...)

	logger.Debug("app ready",
		"catalog", cfg.Catalog, "tagger", cfg.Tagger, "store", cfg.Store, "nodes", len(app.Flow.Nodes))
	return app, nil
}

// Close releases the catalog database and the session store connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// openCatalog loads the CSV dataset, or opens the SQLite database and fills
// it from the CSV dataset on first use.
func (a *App) openCatalog(ctx context.Context) (ports.MovieCatalog, error) {
	cfg := a.Config
	switch cfg.Catalog {
	case config.CatalogSQLite:
		db, err := sqlite.Open(cfg.DBPath, sqlite.WithLogger(a.Logger))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		n, err := db.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			a.Logger.Info("catalog database is empty, importing", "data_dir", cfg.DataDir)
			src, err := csv.Load(cfg.DataDir)
			if err != nil {
				return nil, err
			}
			if _, err := db.Import(ctx, src); err != nil {
				return nil, err
			}
		}
		return db, nil
	default:
		c, err := csv.Load(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.Logger.Debug("catalog loaded", "rows", c.Len())
		return c, nil
	}
}

func newTagger(cfg *config.Config, logger *slog.Logger) (ports.EntityTagger, error) {
	if cfg.Tagger == config.TaggerHTTP {
		return nerhttp.New(cfg.NERURL, nerhttp.WithLogger(logger)), nil
	}
	if cfg.LexiconPath != "" {
		return lexicon.LoadFile(cfg.LexiconPath)
	}
	return lexicon.Default(), nil
}

func loadOntology(cfg *config.Config) (*ontology.Ontology, error) {
	if cfg.OntologyPath != "" {
		return ontology.LoadFile(cfg.OntologyPath)
	}
	return ontology.Default(), nil
}

// newRand is nil for seed 0, which lets the macro library seed from time.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// LoadFlow compiles the configured flow, or the embedded interview.
func LoadFlow(cfg *config.Config) (*compiler.Flow, error) {
	f, err := flow.Load(cfg.FlowPath)
	if err != nil {
		return nil, fmt.Errorf("loading flow: %w", err)
	}
	return f, nil
}

func graphChecks(macros *macro.Registry) []validator.Option {
	return []validator.Option{
		validator.WithMacros(macros.Names()),
		validator.WithRedirects(macro.RedirectTargets()),
	}
}

// OpenStore builds the configured session store, sealed when a session key
// is set. Redis also yields a distributed locker and a closer for the client.
func OpenStore(ctx context.Context, cfg *config.Config) (ports.StateStore, ports.DistributedLocker, io.Closer, error) {
	store, locker, closer, err := openBackend(ctx, cfg)
	if err != nil || cfg.SessionKey == "" {
		return store, locker, closer, err
	}

	mw, err := encryption(cfg)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mw), locker, closer, nil
}

func encryption(cfg *config.Config) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("session_key: %w", err)
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range cfg.SessionOldKeys {
		k, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("session_old_keys[%d]: %w", i, err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, k)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

func openBackend(ctx context.Context, cfg *config.Config) (ports.StateStore, ports.DistributedLocker, io.Closer, error) {
	switch cfg.Store {
	case config.StoreFile:
		return file.New(cfg.SessionDir), nil, nil, nil
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.RedisTTL))
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, redis.NewLocker(store.Client(), store.Prefix()), store, nil
	default:
		return memory.NewStore(), nil, nil, nil
	}
}
