package generator

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/ava12/sentgen/derivation"
)

// LogLevel selects what the generator reports to its logger.
type LogLevel int

const (
	// LogNone disables generator logging.
	LogNone LogLevel = iota
	// LogInfo reports depth start and end with counts and elapsed time.
	LogInfo
	// LogGeneration additionally reports every non-empty table.
	LogGeneration
	// LogVerboseGeneration additionally reports per-rule counts.
	LogVerboseGeneration
	// LogDumpTemplates additionally reports every rule before generation.
	LogDumpTemplates
	// LogDumpDerived additionally reports minimum depths of symbols.
	LogDumpDerived
	// LogEverything reports every produced derivation.
	LogEverything
)

const (
	DefaultMaxDepth          = 5
	DefaultTargetPruningSize = 100000
	DefaultSeed              = "almond is awesome"
)

// Options configure a Generator. Zero values other than MaxDepth are replaced with defaults.
type Options struct {
	// MaxDepth is the largest expanded depth, 0 expands seeds and terminal rules only.
	// Negative value means DefaultMaxDepth.
	MaxDepth int

	// TargetPruningSize bounds both the size of every table and the number of tuples tried per rule and depth.
	TargetPruningSize int

	// Seed is the source of all randomness of a run; equal seeds produce equal results.
	Seed string

	Logger   *zap.Logger
	LogLevel LogLevel

	// Parallelism limits the number of symbols expanded simultaneously.
	Parallelism int

	// Seeds are derivations of external symbols, placed at depth 0.
	Seeds map[string][]*derivation.Derivation

	// Contexts are seeded as depth 0 derivations of ContextSymbol,
	// the value of each derivation is the context value.
	Contexts      []*derivation.Context
	ContextSymbol string

	// Serializer converts root values to programs, defaults to JSONSerializer.
	Serializer Serializer
}

func (o Options) withDefaults() Options {
	if o.MaxDepth < 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.TargetPruningSize <= 0 {
		o.TargetPruningSize = DefaultTargetPruningSize
	}
	if o.Seed == "" {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.Serializer == nil {
		o.Serializer = JSONSerializer{}
	}
	return o
}
