// Package generator expands a compiled grammar into tables of derivations, depth by depth.
//
// A derivation of depth 0 is produced by a rule without non-terminal slots or is seeded by the caller.
// A derivation of depth d > 0 combines child derivations of depths below d, at least one of them
// having depth d-1. Every (symbol, depth) table is deduplicated by key and context, ordered by
// priority, and pruned to the target size. Symbols of the same depth are expanded in parallel.
//
// The package also answers interactive queries: one-step expansion of partial derivations
// and reconstruction of programs from derivation trees.
package generator

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
)

// Stats contains generation counters.
type Stats struct {
	// Depth is the number of expanded depths.
	Depth int

	// Derivations is the total size of all tables.
	Derivations int

	// Tuples is the number of child tuples passed to rules.
	Tuples int64

	// Rejected is the number of tuples rejected by constraints, semantic actions, or templates.
	Rejected int64

	// Pruned is the number of derivations dropped by table pruning.
	Pruned int64
}

// Generator holds expansion state of one grammar. Methods must not be called concurrently.
type Generator struct {
	grammar  *grammar.Grammar
	options  Options
	logger   *zap.Logger
	seed     uint64
	tables   [][][]*derivation.Derivation
	depth    int
	contexts map[int]*derivation.Context

	tuples   atomic.Int64
	rejected atomic.Int64
	pruned   atomic.Int64
}

// New creates a generator. Seeds must belong to external symbols,
// derivations of ContextSymbol are created from Options.Contexts.
func New(g *grammar.Grammar, options Options) (*Generator, error) {
	options = options.withDefaults()
	gen := &Generator{
		grammar:  g,
		options:  options,
		logger:   options.Logger,
		seed:     hashSeed(options.Seed),
		tables:   make([][][]*derivation.Derivation, len(g.Symbols())),
		contexts: make(map[int]*derivation.Context, len(options.Contexts)),
	}

	for i := range gen.tables {
		gen.tables[i] = make([][]*derivation.Derivation, options.MaxDepth+1)
	}

	for name := range options.Seeds {
		e := gen.checkExternal(name)
		if e != nil {
			return nil, e
		}
	}

	if len(options.Contexts) > 0 {
		e := gen.checkExternal(options.ContextSymbol)
		if e != nil {
			return nil, e
		}
		for _, c := range options.Contexts {
			gen.contexts[c.ID()] = c
		}
	}

	if options.LogLevel >= LogDumpTemplates {
		for _, r := range g.Rules() {
			gen.logger.Debug("rule", zap.Int("index", r.Index()), zap.Stringer("rule", r), zap.Stringer("template", r.Template))
		}
	}
	if options.LogLevel >= LogDumpDerived {
		for _, s := range g.Symbols() {
			gen.logger.Debug("symbol", zap.String("symbol", s.Name), zap.Int("minDepth", s.MinDepth), zap.Bool("external", s.External))
		}
	}

	return gen, nil
}

func (gen *Generator) checkExternal(name string) error {
	s, has := gen.grammar.Symbol(name)
	if !has {
		return seedError(name, "symbol is not defined")
	}
	if !s.External {
		return seedError(name, "symbol is not external")
	}
	return nil
}

func hashSeed(seed string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return h.Sum64()
}

// cellRand returns the random stream of a (symbol, depth) table.
func (gen *Generator) cellRand(symbol, depth int) *rand.Rand {
	return rand.New(rand.NewPCG(gen.seed, uint64(symbol)<<32|uint64(depth)))
}

// Rand returns a new random stream derived from the run seed and distinct from table streams.
// Callers use it to sample or postprocess sentences reproducibly.
func (gen *Generator) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(gen.seed, ^uint64(0)))
}

// Grammar returns the expanded grammar.
func (gen *Generator) Grammar() *grammar.Grammar {
	return gen.grammar
}

// Options returns generator options with defaults filled in.
func (gen *Generator) Options() Options {
	return gen.options
}

// Generate expands all depths up to MaxDepth and returns root derivations of all depths in depth order.
func (gen *Generator) Generate(ctx context.Context) ([]*derivation.Derivation, error) {
	e := gen.ExpandDepth(ctx, gen.options.MaxDepth)
	if e != nil {
		return nil, e
	}

	var result []*derivation.Derivation
	root := gen.grammar.Root().Index
	for _, table := range gen.tables[root] {
		result = append(result, table...)
	}
	return result, nil
}

// ExpandDepth expands all depths up to the given one that are not expanded yet.
// Cancellation is checked before every depth.
func (gen *Generator) ExpandDepth(ctx context.Context, depth int) error {
	if depth < 0 || depth > gen.options.MaxDepth {
		return depthError(depth, gen.options.MaxDepth)
	}

	for gen.depth <= depth {
		e := ctx.Err()
		if e != nil {
			return e
		}

		e = gen.expand(ctx, gen.depth)
		if e != nil {
			return e
		}

		gen.depth++
	}

	return nil
}

func (gen *Generator) expand(ctx context.Context, depth int) error {
	started := time.Now()
	if gen.options.LogLevel >= LogInfo {
		gen.logger.Info("expanding depth", zap.Int("depth", depth))
	}

	symbols := gen.grammar.Symbols()
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(gen.options.Parallelism)
	for _, s := range symbols {
		eg.Go(func() error {
			table, e := gen.expandCell(s, depth)
			if e != nil {
				return e
			}

			gen.tables[s.Index][depth] = table
			if len(table) > 0 && gen.options.LogLevel >= LogGeneration {
				gen.logger.Info("table", zap.String("symbol", s.Name), zap.Int("depth", depth), zap.Int("size", len(table)))
			}
			return nil
		})
	}

	e := eg.Wait()
	if e != nil {
		return e
	}

	if gen.options.LogLevel >= LogInfo {
		total := 0
		for _, s := range symbols {
			total += len(gen.tables[s.Index][depth])
		}
		gen.logger.Info("depth expanded",
			zap.Int("depth", depth),
			zap.Int("derivations", total),
			zap.Int("root", len(gen.tables[gen.grammar.Root().Index][depth])),
			zap.Duration("elapsed", time.Since(started)))
	}

	return nil
}

func (gen *Generator) expandCell(s *grammar.Symbol, depth int) ([]*derivation.Derivation, error) {
	rng := gen.cellRand(s.Index, depth)
	c := newCell()

	if depth == 0 {
		e := gen.seedCell(s, c)
		if e != nil {
			return nil, e
		}
	}

	for _, r := range s.Rules {
		if r.MinDepth() > depth || (depth == 0) != (len(r.NonTerminals()) == 0) {
			continue
		}

		before := c.len()
		e := gen.applyRule(r, depth, rng, c)
		if e != nil {
			return nil, e
		}

		if gen.options.LogLevel >= LogVerboseGeneration {
			gen.logger.Debug("rule applied", zap.Stringer("rule", r), zap.Int("depth", depth), zap.Int("added", c.len()-before))
		}
	}

	gen.pruned.Add(int64(c.prune(gen.options.TargetPruningSize, rng)))
	result := c.sorted()

	if gen.options.LogLevel >= LogEverything {
		for _, d := range result {
			gen.logger.Debug("derivation", zap.String("symbol", s.Name), zap.Int("depth", depth),
				zap.String("sentence", d.BestSentence()), zap.Stringer("key", d.Key), zap.Float64("priority", d.Priority))
		}
	}

	return result, nil
}

func (gen *Generator) seedCell(s *grammar.Symbol, c *cell) error {
	if !s.External {
		return nil
	}

	for _, d := range gen.options.Seeds[s.Name] {
		c.add(d)
	}

	if s.Name != gen.options.ContextSymbol {
		return nil
	}

	for _, ctx := range gen.options.Contexts {
		d, e := derivation.NewContextSeed(ctx)
		if e != nil {
			return e
		}
		c.add(d)
	}
	return nil
}

// Table returns derivations of a symbol at given depth, nil if the symbol is unknown or the depth is not expanded.
// The result must not be modified.
func (gen *Generator) Table(symbol string, depth int) []*derivation.Derivation {
	s, has := gen.grammar.Symbol(symbol)
	if !has || depth < 0 || depth >= gen.depth {
		return nil
	}
	return gen.tables[s.Index][depth]
}

// Stats returns generation counters.
func (gen *Generator) Stats() Stats {
	total := 0
	for _, tables := range gen.tables {
		for _, table := range tables {
			total += len(table)
		}
	}

	return Stats{
		Depth:       gen.depth,
		Derivations: total,
		Tuples:      gen.tuples.Load(),
		Rejected:    gen.rejected.Load(),
		Pruned:      gen.pruned.Load(),
	}
}
