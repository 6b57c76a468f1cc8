package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/teevee/internal/cli"
	"github.com/aretw0/teevee/internal/config"
	"github.com/aretw0/teevee/internal/testutils"
	"github.com/aretw0/teevee/pkg/adapters/sqlite"
)

// testConfig points at a temporary copy of the catalog fixture.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = testutils.SetupDataDir(t)
	cfg.DBPath = filepath.Join(dir, "catalog.db")
	cfg.SessionDir = filepath.Join(dir, "sessions")
	cfg.Seed = 7
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *cli.App {
	t.Helper()
	app, err := cli.NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNewApp_CSVCatalog(t *testing.T) {
	app := newApp(t, testConfig(t))
	ctx := context.Background()

	state, err := app.Engine.Start(ctx, "s1")
	require.NoError(t, err)
	state, err = app.Engine.Navigate(ctx, state, "hi, i'm Sarah")
	require.NoError(t, err)
	assert.Equal(t, "getmovie", state.CurrentNodeID)

	state, err = app.Engine.Navigate(ctx, state, `i loved "Inception"`)
	require.NoError(t, err)
	assert.Equal(t, "genre", state.CurrentNodeID)
	require.Len(t, state.Vars.Results, 1)
}

func TestNewApp_SQLiteImportsOnFirstUse(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog = config.CatalogSQLite

	app, err := cli.NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, app.Close())

	db, err := sqlite.Open(cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNewApp_MissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(t.TempDir(), "nope")

	_, err := cli.NewApp(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewApp_RejectsBrokenFlow(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlowPath = filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(cfg.FlowPath, []byte(`entry: start
states:
  start:
    prompt: "hi"
    branches:
      - when: "#NOPE"
        to: nowhere
      - when: error
        to: start
`), 0o644))

	_, err := cli.NewApp(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestNewApp_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store = config.StoreRedis
	cfg.RedisAddr = mr.Addr()

	app := newApp(t, cfg)
	var out bytes.Buffer
	err := cli.Run(context.Background(), app, cli.RunOptions{
		SessionID: "redis-1",
		Headless:  true,
		Input:     strings.NewReader("hi, i'm Sarah\n"),
		Output:    &out,
	})
	require.NoError(t, err)

	ids, err := cli.ListSessions(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-1"}, ids)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = config.StoreRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := cli.NewApp(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "connecting to redis")
}
