// Package derivation defines derivations: sentence fragments paired with semantic values,
// and the operation combining child derivations into a parent one.
package derivation

import (
	"fmt"
	"math"
	"sync"

	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
)

// Child is an element of a combination, either a Terminal or a *Derivation.
type Child interface {
	child()
}

// Terminal is a literal child; its semantic value is nil.
type Terminal struct {
	Text render.Replaceable
}

func (Terminal) child() {}

// Derivation represents a (possibly partial) sentence and the value it denotes.
// Derivations are immutable and safe for concurrent use.
type Derivation struct {
	Key      key.Key
	Value    any
	Context  *Context
	Sentence render.Replaceable
	Priority float64

	// Children holds provenance, one entry per rule slot.
	Children []Child

	// Rule is nil for seed derivations.
	Rule *grammar.Rule

	flatOnce sync.Once
	flat     string
}

func (*Derivation) child() {}

// NewSeed creates a derivation that is not produced by any rule.
func NewSeed(k key.Key, value any, sentence render.Replaceable, ctx *Context, priority float64) (*Derivation, error) {
	if value == nil {
		return nil, invalidValueError(nil)
	}
	if !isFinite(priority) {
		return nil, invalidPriorityError(nil, priority)
	}
	if sentence == nil {
		sentence = &render.Phrase{}
	}

	return &Derivation{Key: k, Value: value, Context: ctx, Sentence: sentence, Priority: priority}, nil
}

// BestSentence flattens the sentence resolving every choice to its first alternative.
// The result is computed once.
func (d *Derivation) BestSentence() string {
	d.flatOnce.Do(func() {
		d.flat = render.Best(d.Sentence)
	})
	return d.flat
}

// SampleSentence flattens the sentence resolving every choice with rng. The result is never cached.
func (d *Derivation) SampleSentence(rng render.Rand) string {
	return render.Sample(d.Sentence, rng)
}

// Resolve returns a copy of the derivation in which every choice terminal is replaced
// with one of its alternatives picked by rng, so the best sentence of the copy and its
// children agree. Alternatives rejected by the rule template are never picked.
// Seeds are returned as is, as is any derivation whose template cannot be re-applied.
func (d *Derivation) Resolve(rng render.Rand) *Derivation {
	if d.Rule == nil {
		return d
	}

	tmpl := d.Rule.Template
	if tmpl == nil {
		tmpl = render.Sequential(len(d.Rule.Expansion))
	}

	children := make([]Child, len(d.Children))
	fragments := make([]render.Replaceable, len(d.Children))
	for i, c := range d.Children {
		switch x := c.(type) {
		case Terminal:
			if choice, is := x.Text.(*render.Choice); is {
				x = Terminal{pick(choice, tmpl, i, rng)}
			}
			children[i] = x
			fragments[i] = x.Text

		case *Derivation:
			resolved := x.Resolve(rng)
			children[i] = resolved
			fragments[i] = resolved.Sentence
		}
	}

	sentence, valid := tmpl.Replace(fragments)
	if !valid {
		return d
	}

	return &Derivation{
		Key:      d.Key,
		Value:    d.Value,
		Context:  d.Context,
		Sentence: sentence,
		Priority: d.Priority,
		Children: children,
		Rule:     d.Rule,
	}
}

func pick(c *render.Choice, tmpl *render.Template, slot int, rng render.Rand) render.Replaceable {
	alts := make([]*render.Phrase, 0, len(c.Alternatives))
	for _, p := range c.Alternatives {
		if tmpl.Accepts(slot, p) {
			alts = append(alts, p)
		}
	}
	if len(alts) == 0 {
		return c
	}
	return alts[rng.IntN(len(alts))]
}

func (d *Derivation) String() string {
	return d.BestSentence()
}

// Clone returns a copy of the derivation with its own children slice.
func (d *Derivation) Clone() *Derivation {
	return &Derivation{
		Key:      d.Key,
		Value:    d.Value,
		Context:  d.Context,
		Sentence: d.Sentence,
		Priority: d.Priority,
		Children: copyChildren(d.Children),
		Rule:     d.Rule,
	}
}

// ApplyRule combines children using rule template, semantic action, key function, and priority.
func ApplyRule(r *grammar.Rule, children []Child) (*Derivation, error) {
	tmpl := r.Template
	if tmpl == nil {
		tmpl = render.Sequential(len(r.Expansion))
	}
	return Combine(children, tmpl, r.Apply, r.KeyOf, r.Priority, r)
}

// Combine builds a new derivation from children.
//
// Returns nil derivation and nil error if the semantic action rejects the combination
// or if the template cannot be resolved with children fragments; this is an expected outcome.
// Returns an error if children contexts are incompatible, if the resulting priority is not finite,
// or if the semantic action returns nil value; these are invariant violations.
// keyFn may be nil, key.FromValue is used then.
func Combine(children []Child, tmpl *render.Template, action grammar.SemanticAction,
	keyFn grammar.KeyFunction, priority float64, rule *grammar.Rule) (*Derivation, error) {

	values := make([]any, len(children))
	fragments := make([]render.Replaceable, len(children))
	var ctx *Context
	newPriority := priority

	for i, c := range children {
		switch x := c.(type) {
		case Terminal:
			fragments[i] = x.Text

		case *Derivation:
			merged, compatible := Meet(ctx, x.Context)
			if !compatible {
				return nil, incompatibleContextError(rule, ctx, x.Context)
			}

			ctx = merged
			newPriority += x.Priority
			values[i] = x.Value
			fragments[i] = x.Sentence

		default:
			panic(fmt.Sprintf("unexpected derivation child %T", c))
		}
	}

	if !isFinite(newPriority) {
		return nil, invalidPriorityError(rule, newPriority)
	}

	value, valid := action(values...)
	if !valid {
		return nil, nil
	}
	if value == nil {
		return nil, invalidValueError(rule)
	}

	sentence, valid := tmpl.Replace(fragments)
	if !valid {
		return nil, nil
	}

	var k key.Key
	if keyFn == nil {
		k = key.FromValue(value)
	} else {
		k = keyFn(value)
	}

	return &Derivation{
		Key:      k,
		Value:    value,
		Context:  ctx,
		Sentence: sentence,
		Priority: newPriority,
		Children: copyChildren(children),
		Rule:     rule,
	}, nil
}

func copyChildren(children []Child) []Child {
	if children == nil {
		return nil
	}
	result := make([]Child, len(children))
	copy(result, children)
	return result
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
