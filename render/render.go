// Package render defines render trees: lazily flattened sentences made of phrases,
// choices between alternative phrases, and concatenations produced by templates.
//
// A render tree is immutable. Choices are resolved only when the tree is flattened,
// either deterministically (Best) or with a caller-supplied random source (Sample),
// so the same tree can yield different surface strings without re-deriving semantics.
package render

import (
	"sort"
	"strings"
)

// Rand is the random source used to resolve choices.
// *math/rand/v2.Rand implements this interface.
type Rand interface {
	IntN(n int) int
}

// Flags are named phrase attributes (e.g. plural=one) used by template constraints.
type Flags map[string]string

func (fs Flags) get(name string) (string, bool) {
	if fs == nil {
		return "", false
	}
	v, has := fs[name]
	return v, has
}

func (fs Flags) String() string {
	if len(fs) == 0 {
		return ""
	}

	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + fs[name]
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Replaceable is a node of a render tree.
type Replaceable interface {
	// AppendBest appends tokens to out resolving every choice to its first alternative.
	AppendBest(out []string) []string

	// AppendSample appends tokens to out resolving every choice with rng.
	AppendSample(rng Rand, out []string) []string

	// Constrain returns the node restricted to phrases having given flag value
	// (phrases without the flag are unrestricted) and false if no phrase qualifies.
	Constrain(flag, value string) (Replaceable, bool)

	// Flag returns node flag value if the node defines it unambiguously.
	Flag(name string) (string, bool)

	// String returns debug representation.
	String() string
}

// Best flattens a render tree resolving every choice to its first alternative.
func Best(r Replaceable) string {
	if r == nil {
		return ""
	}
	return strings.Join(r.AppendBest(nil), " ")
}

// Sample flattens a render tree resolving every choice independently with rng.
func Sample(r Replaceable, rng Rand) string {
	if r == nil {
		return ""
	}
	return strings.Join(r.AppendSample(rng, nil), " ")
}

// Phrase is a literal piece of text, possibly empty, possibly containing several space-separated tokens.
type Phrase struct {
	Text  string
	Flags Flags
}

func NewPhrase(text string) *Phrase {
	return &Phrase{Text: text}
}

func (p *Phrase) tokens(out []string) []string {
	if p.Text == "" {
		return out
	}
	return append(out, p.Text)
}

func (p *Phrase) AppendBest(out []string) []string {
	return p.tokens(out)
}

func (p *Phrase) AppendSample(_ Rand, out []string) []string {
	return p.tokens(out)
}

func (p *Phrase) Constrain(flag, value string) (Replaceable, bool) {
	if p.matches(flag, value) {
		return p, true
	}
	return nil, false
}

func (p *Phrase) matches(flag, value string) bool {
	v, has := p.Flags.get(flag)
	return !has || v == value
}

func (p *Phrase) Flag(name string) (string, bool) {
	return p.Flags.get(name)
}

func (p *Phrase) String() string {
	return p.Text + p.Flags.String()
}

// Choice is a set of alternative phrases, one of which is picked at render time.
type Choice struct {
	Alternatives []*Phrase
}

// NewChoice creates a choice of unflagged phrases.
func NewChoice(texts ...string) *Choice {
	alts := make([]*Phrase, len(texts))
	for i, text := range texts {
		alts[i] = NewPhrase(text)
	}
	return &Choice{alts}
}

func (c *Choice) AppendBest(out []string) []string {
	if len(c.Alternatives) == 0 {
		return out
	}
	return c.Alternatives[0].tokens(out)
}

func (c *Choice) AppendSample(rng Rand, out []string) []string {
	if len(c.Alternatives) == 0 {
		return out
	}
	return c.Alternatives[rng.IntN(len(c.Alternatives))].tokens(out)
}

func (c *Choice) Constrain(flag, value string) (Replaceable, bool) {
	alts := make([]*Phrase, 0, len(c.Alternatives))
	for _, p := range c.Alternatives {
		if p.matches(flag, value) {
			alts = append(alts, p)
		}
	}

	switch len(alts) {
	case 0:
		return nil, false
	case 1:
		return alts[0], true
	case len(c.Alternatives):
		return c, true
	default:
		return &Choice{alts}, true
	}
}

func (c *Choice) Flag(name string) (string, bool) {
	if len(c.Alternatives) == 0 {
		return "", false
	}

	value, has := c.Alternatives[0].Flags.get(name)
	if !has {
		return "", false
	}
	for _, p := range c.Alternatives[1:] {
		v, h := p.Flags.get(name)
		if !h || v != value {
			return "", false
		}
	}
	return value, true
}

func (c *Choice) String() string {
	parts := make([]string, len(c.Alternatives))
	for i, p := range c.Alternatives {
		parts[i] = p.String()
	}
	return "C[" + strings.Join(parts, "|") + "]"
}

// Concat is a concatenation of render trees, produced by Template.Replace.
type Concat struct {
	Parts []Replaceable
	Flags Flags
}

func (c *Concat) AppendBest(out []string) []string {
	for _, p := range c.Parts {
		out = p.AppendBest(out)
	}
	return out
}

func (c *Concat) AppendSample(rng Rand, out []string) []string {
	for _, p := range c.Parts {
		out = p.AppendSample(rng, out)
	}
	return out
}

func (c *Concat) Constrain(flag, value string) (Replaceable, bool) {
	v, has := c.Flags.get(flag)
	if !has || v == value {
		return c, true
	}
	return nil, false
}

func (c *Concat) Flag(name string) (string, bool) {
	return c.Flags.get(name)
}

func (c *Concat) String() string {
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, " ") + ")" + c.Flags.String()
}
