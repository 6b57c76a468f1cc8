package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/teevee/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "teevee version "))
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow is valid")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "nomovie")
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	require.NoError(t, runCmd.ParseFlags([]string{"--store", "file", "--seed", "42", "--tagger", "http"}))
	t.Cleanup(func() {
		for _, name := range []string{"store", "seed", "tagger"} {
			f := runCmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	cfg, err := loadConfig(runCmd)
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, config.TaggerHTTP, cfg.Tagger)
	assert.Equal(t, config.CatalogCSV, cfg.Catalog, "unset flags keep the defaults")
}

func TestLoadConfig_RejectsUnknownStore(t *testing.T) {
	_, err := execute(t, "session", "ls", "--store", "floppy")
	assert.ErrorContains(t, err, "store")
}
