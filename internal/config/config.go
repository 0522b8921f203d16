// Package config loads sentgen run configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/generator"
	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
)

const (
	FormatTSV    = "tsv"
	FormatSQLite = "sqlite"
)

// Config holds all sentgen settings.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Server     ServerConfig     `yaml:"server"`
}

// GenerationConfig configures grammar expansion.
type GenerationConfig struct {
	Grammar           string `yaml:"grammar"`
	MaxDepth          int    `yaml:"max_depth"`
	TargetPruningSize int    `yaml:"target_pruning_size"`
	RandomSeed        string `yaml:"random_seed"`
	Locale            string `yaml:"locale"`
	Parallelism       int    `yaml:"parallelism"`

	// Debug is the generator log level, 0 disables generator logging.
	Debug int `yaml:"debug"`

	// Seeds are phrases of external symbols, keyed by symbol name.
	Seeds map[string][]SeedConfig `yaml:"seeds,omitempty"`

	// Contexts are values of ContextSymbol seeds.
	ContextSymbol string `yaml:"context_symbol,omitempty"`
	Contexts      []any  `yaml:"contexts,omitempty"`
}

// SeedConfig describes a single seed derivation.
type SeedConfig struct {
	Text     string  `yaml:"text"`
	Value    any     `yaml:"value"`
	Priority float64 `yaml:"priority"`
}

// OutputConfig configures the dataset sink.
type OutputConfig struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"` // tsv, sqlite
	IDPrefix string `yaml:"id_prefix"`
	Sample   bool   `yaml:"sample"`
	Progress bool   `yaml:"progress"`
}

// ServerConfig configures the partial completion server.
type ServerConfig struct {
	// MaxLineSize limits the size of a single request line in bytes.
	MaxLineSize int `yaml:"max_line_size"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			MaxDepth:          generator.DefaultMaxDepth,
			TargetPruningSize: generator.DefaultTargetPruningSize,
			RandomSeed:        generator.DefaultSeed,
			Locale:            "en-US",
		},
		Output: OutputConfig{
			Format:   FormatTSV,
			Progress: true,
		},
		Server: ServerConfig{
			MaxLineSize: 1 << 20,
		},
	}
}

// Load reads configuration from a YAML file on top of defaults.
// Defaults are returned if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, e := os.ReadFile(path)
	if e != nil {
		if os.IsNotExist(e) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", e)
	}

	if e := yaml.Unmarshal(data, cfg); e != nil {
		return nil, fmt.Errorf("failed to parse config: %w", e)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if e := os.MkdirAll(filepath.Dir(path), 0755); e != nil {
		return fmt.Errorf("failed to create config directory: %w", e)
	}

	data, e := yaml.Marshal(c)
	if e != nil {
		return fmt.Errorf("failed to marshal config: %w", e)
	}

	if e := os.WriteFile(path, data, 0644); e != nil {
		return fmt.Errorf("failed to write config: %w", e)
	}
	return nil
}

// Validate checks value ranges; it does not check that files exist.
func (c *Config) Validate() error {
	g := &c.Generation
	if g.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth: %d", g.MaxDepth)
	}
	if g.TargetPruningSize < 0 {
		return fmt.Errorf("invalid target_pruning_size: %d", g.TargetPruningSize)
	}
	if g.Debug < int(generator.LogNone) || g.Debug > int(generator.LogEverything) {
		return fmt.Errorf("invalid debug level: %d (valid: %d..%d)", g.Debug, generator.LogNone, generator.LogEverything)
	}
	if _, e := language.Parse(g.Locale); e != nil {
		return fmt.Errorf("invalid locale %q: %w", g.Locale, e)
	}
	for symbol, seeds := range g.Seeds {
		for i, s := range seeds {
			if s.Value == nil {
				return fmt.Errorf("seed #%d of %s has no value", i, symbol)
			}
		}
	}
	if len(g.Contexts) > 0 && g.ContextSymbol == "" {
		return fmt.Errorf("contexts require context_symbol")
	}

	switch c.Output.Format {
	case FormatTSV, FormatSQLite:
	default:
		return fmt.Errorf("invalid output format: %s (valid: %s, %s)", c.Output.Format, FormatTSV, FormatSQLite)
	}

	if c.Server.MaxLineSize <= 0 {
		return fmt.Errorf("invalid max_line_size: %d", c.Server.MaxLineSize)
	}
	return nil
}

// GeneratorOptions converts generation settings to generator options.
// Seeds get keys computed from their values.
func (c *Config) GeneratorOptions(logger *zap.Logger) (generator.Options, error) {
	g := &c.Generation
	opts := generator.Options{
		MaxDepth:          g.MaxDepth,
		TargetPruningSize: g.TargetPruningSize,
		Seed:              g.RandomSeed,
		Logger:            logger,
		LogLevel:          generator.LogLevel(g.Debug),
		Parallelism:       g.Parallelism,
		ContextSymbol:     g.ContextSymbol,
	}

	if len(g.Seeds) > 0 {
		opts.Seeds = make(map[string][]*derivation.Derivation, len(g.Seeds))
		for symbol, seeds := range g.Seeds {
			for _, s := range seeds {
				d, e := derivation.NewSeed(key.FromValue(s.Value), s.Value, render.NewPhrase(s.Text), nil, s.Priority)
				if e != nil {
					return opts, fmt.Errorf("invalid seed of %s: %w", symbol, e)
				}
				opts.Seeds[symbol] = append(opts.Seeds[symbol], d)
			}
		}
	}

	if len(g.Contexts) > 0 {
		contexts := derivation.NewAllocator()
		for _, v := range g.Contexts {
			opts.Contexts = append(opts.Contexts, contexts.New(v))
		}
	}

	return opts, nil
}
