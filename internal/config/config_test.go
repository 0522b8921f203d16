package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ava12/sentgen/generator"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.Generation.MaxDepth)
	assert.Equal(t, 100000, cfg.Generation.TargetPruningSize)
	assert.Equal(t, "almond is awesome", cfg.Generation.RandomSeed)
	assert.Equal(t, "en-US", cfg.Generation.Locale)
	assert.Equal(t, FormatTSV, cfg.Output.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissing(t *testing.T) {
	cfg, e := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, e)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  grammar: restaurants.yaml
  max_depth: 3
  random_seed: test
  seeds:
    cuisine:
      - {text: italian, value: italian, priority: 0.5}
      - {text: thai, value: thai}
  context_symbol: ctx
  contexts: [{type: restaurant}]
output:
  format: sqlite
  id_prefix: r
`), 0644))

	cfg, e := Load(path)
	require.NoError(t, e)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "restaurants.yaml", cfg.Generation.Grammar)
	assert.Equal(t, 3, cfg.Generation.MaxDepth)
	assert.Equal(t, 100000, cfg.Generation.TargetPruningSize)
	assert.Equal(t, FormatSQLite, cfg.Output.Format)
	assert.Equal(t, "r", cfg.Output.IDPrefix)
	assert.True(t, cfg.Output.Progress)

	opts, e := cfg.GeneratorOptions(zaptest.NewLogger(t))
	require.NoError(t, e)
	assert.Equal(t, "test", opts.Seed)
	require.Len(t, opts.Seeds["cuisine"], 2)
	assert.Equal(t, "italian", opts.Seeds["cuisine"][0].BestSentence())
	assert.Equal(t, 0.5, opts.Seeds["cuisine"][0].Priority)
	require.Len(t, opts.Contexts, 1)
	assert.Equal(t, map[string]any{"type": "restaurant"}, opts.Contexts[0].Value)
	assert.Equal(t, "ctx", opts.ContextSymbol)
}

func TestLoadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generation: [\n"), 0644))
	_, e := Load(path)
	assert.ErrorContains(t, e, "failed to parse config")
}

func TestValidate(t *testing.T) {
	samples := map[string]func(c *Config){
		"max_depth":           func(c *Config) { c.Generation.MaxDepth = -1 },
		"target_pruning_size": func(c *Config) { c.Generation.TargetPruningSize = -1 },
		"debug level":         func(c *Config) { c.Generation.Debug = int(generator.LogEverything) + 1 },
		"locale":              func(c *Config) { c.Generation.Locale = "not a locale!" },
		"no value":            func(c *Config) { c.Generation.Seeds = map[string][]SeedConfig{"x": {{Text: "x"}}} },
		"context_symbol":      func(c *Config) { c.Generation.Contexts = []any{1} },
		"output format":       func(c *Config) { c.Output.Format = "xml" },
		"max_line_size":       func(c *Config) { c.Server.MaxLineSize = 0 },
	}

	for msg, breakConfig := range samples {
		cfg := DefaultConfig()
		breakConfig(cfg)
		assert.ErrorContains(t, cfg.Validate(), msg)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sentgen.yaml")
	cfg := DefaultConfig()
	cfg.Generation.MaxDepth = 7
	cfg.Output.Format = FormatSQLite
	require.NoError(t, cfg.Save(path))

	loaded, e := Load(path)
	require.NoError(t, e)
	assert.Equal(t, cfg, loaded)
}
