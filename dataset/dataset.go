// Package dataset turns root derivations into corpus examples and writes them to sinks.
package dataset

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/generator"
	"github.com/ava12/sentgen/i18n"
	"github.com/ava12/sentgen/render"
	"github.com/ava12/sentgen/tree"
)

// Example is a single corpus entry.
type Example struct {
	ID       string
	Depth    int
	Sentence string
	Program  string

	// Derivation is the JSON provenance tree of the example.
	Derivation string
}

// Writer is a corpus sink.
type Writer interface {
	Write(ex *Example) error
	Close() error
}

// Aborter is implemented by writers able to discard everything written so far.
type Aborter interface {
	Abort() error
}

// Finish closes w after a build. If the build failed with e and w is an Aborter,
// written examples are discarded instead. Returns e, or the close error if e is nil.
func Finish(w Writer, e error) error {
	if e != nil {
		if a, is := w.(Aborter); is {
			_ = a.Abort()
			return e
		}
	}

	ce := w.Close()
	if e == nil {
		e = ce
	}
	return e
}

// Builder converts generator output to examples.
type Builder struct {
	Generator *generator.Generator

	// Pack postprocesses sentences, no postprocessing is done if nil.
	Pack i18n.LanguagePack

	// IDPrefix is prepended to sequential example numbers.
	IDPrefix string

	// Sample makes sentences resolve choices randomly instead of taking first alternatives.
	// The derivation tree of an example records the same picks as its sentence.
	Sample bool

	// Progress, if set, is called after every written example with the total count.
	Progress func(written int)

	Logger *zap.Logger
}

// Example converts a root derivation of given depth.
func (b *Builder) Example(id string, depth int, d *derivation.Derivation, rng render.Rand) (*Example, error) {
	if b.Sample {
		d = d.Resolve(rng)
	}
	sentence := d.BestSentence()
	if b.Pack != nil {
		sentence = b.Pack.PostprocessSynthetic(sentence, d.Value, rng, i18n.ForUser)
	}

	program, e := b.Generator.Serialize(d)
	if e != nil {
		return nil, e
	}

	root := b.Generator.Grammar().Root().Name
	return &Example{
		ID:         id,
		Depth:      depth,
		Sentence:   sentence,
		Program:    program,
		Derivation: tree.FromDerivation(d, root).String(),
	}, nil
}

// Build generates root derivations of all depths and writes them to w in depth order.
// Returns the number of written examples. w is not closed.
func (b *Builder) Build(ctx context.Context, w Writer) (int, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	_, e := b.Generator.Generate(ctx)
	if e != nil {
		return 0, e
	}

	rng := b.Generator.Rand()
	root := b.Generator.Grammar().Root().Name
	written := 0
	for depth := 0; depth <= b.Generator.Options().MaxDepth; depth++ {
		for _, d := range b.Generator.Table(root, depth) {
			e = ctx.Err()
			if e != nil {
				return written, e
			}

			var ex *Example
			ex, e = b.Example(b.IDPrefix+strconv.Itoa(written), depth, d, rng)
			if e == nil {
				e = w.Write(ex)
			}
			if e != nil {
				return written, e
			}

			written++
			if b.Progress != nil {
				b.Progress(written)
			}
		}
		logger.Debug("depth written", zap.Int("depth", depth), zap.Int("total", written))
	}

	return written, nil
}
