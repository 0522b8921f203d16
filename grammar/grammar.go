// Package grammar defines the rule table consumed by the generator.
//
// A grammar is a set of rules, each one expanding a symbol into a sequence of slots:
// terminals, choices between alternative terminals, and non-terminals referring to other symbols.
// Every rule carries a semantic action computing the value of a derivation from the values
// of its children, a key function summarizing that value, a priority, and a render template.
//
// Grammar definitions must be compiled before use; see Compile.
package grammar

import (
	"fmt"
	"strings"

	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
)

// Unresolved is the index of a non-terminal that does not belong to a compiled rule.
const Unresolved = -1

// Infinite is the minimum depth of symbols that cannot be derived.
const Infinite = int(^uint(0) >> 1)

// SemanticAction computes derivation value from slot values; terminal slots pass nil.
// ok == false means that the combination is semantically invalid, it is not an error.
// Returning nil value with ok == true violates generator invariants.
type SemanticAction func(args ...any) (value any, ok bool)

// KeyFunction computes derivation key from derivation value.
type KeyFunction func(value any) key.Key

// Slot is an element of rule expansion: *Terminal, *Choice, or *NonTerminal.
type Slot interface {
	slot()
	String() string
}

// Terminal is a literal slot.
type Terminal struct {
	Phrase *render.Phrase
}

// Literal creates a terminal slot.
func Literal(text string) *Terminal {
	return &Terminal{render.NewPhrase(text)}
}

func (*Terminal) slot() {}

func (t *Terminal) String() string {
	return fmt.Sprintf("%q", t.Phrase.Text)
}

// Choice is a terminal slot with several alternative surface forms resolved at render time.
type Choice struct {
	Choice *render.Choice
}

// Alternatives creates a choice slot.
func Alternatives(texts ...string) *Choice {
	return &Choice{render.NewChoice(texts...)}
}

func (*Choice) slot() {}

func (c *Choice) String() string {
	return c.Choice.String()
}

// RelativeKeyConstraint requires key field Field of this slot to be equal
// to key field OtherField of the slot with index OtherIndex.
type RelativeKeyConstraint struct {
	Field      string
	OtherIndex int
	OtherField string
}

// ConstantKeyConstraint requires key field Field of this slot to be equal to Value.
type ConstantKeyConstraint struct {
	Field string
	Value key.Value
}

// NonTerminal is a reference to a grammar symbol.
type NonTerminal struct {
	Symbol string

	// Index is the 0-based slot position within the owning rule, assigned by Compile.
	Index int

	// Name is an optional binding name.
	Name string

	// At most one constraint may be set.
	Relative *RelativeKeyConstraint
	Constant *ConstantKeyConstraint
}

// NT creates a non-terminal slot without constraints.
func NT(symbol string) *NonTerminal {
	return &NonTerminal{Symbol: symbol, Index: Unresolved}
}

// Named sets binding name.
func (nt *NonTerminal) Named(name string) *NonTerminal {
	nt.Name = name
	return nt
}

// Agrees sets relative key constraint.
func (nt *NonTerminal) Agrees(field string, otherIndex int, otherField string) *NonTerminal {
	nt.Relative = &RelativeKeyConstraint{field, otherIndex, otherField}
	return nt
}

// Equals sets constant key constraint.
func (nt *NonTerminal) Equals(field string, value key.Value) *NonTerminal {
	nt.Constant = &ConstantKeyConstraint{field, value}
	return nt
}

// Accepts checks constant constraint against a candidate key.
func (nt *NonTerminal) Accepts(k key.Key) bool {
	if nt.Constant == nil {
		return true
	}
	v, has := k.Get(nt.Constant.Field)
	return has && key.ValuesEqual(v, nt.Constant.Value)
}

func (*NonTerminal) slot() {}

func (nt *NonTerminal) String() string {
	return "NT[" + nt.Symbol + "]"
}

// Rule expands Symbol into Expansion.
type Rule struct {
	Symbol    string
	Expansion []Slot

	// Action defaults to DefaultAction.
	Action SemanticAction

	// Key defaults to key.FromValue.
	Key KeyFunction

	Priority float64

	// Template defaults to render.Sequential(len(Expansion)).
	Template *render.Template

	// Name is an optional label used in logs and provenance trees.
	Name string

	index        int
	symbolIndex  int
	minDepth     int
	nonTerminals []*NonTerminal
}

// Index returns rule position in compiled grammar.
func (r *Rule) Index() int {
	return r.index
}

// SymbolIndex returns index of rule symbol in compiled grammar.
func (r *Rule) SymbolIndex() int {
	return r.symbolIndex
}

// MinDepth returns the smallest depth at which the rule can produce a derivation.
func (r *Rule) MinDepth() int {
	return r.minDepth
}

// NonTerminals returns non-terminal slots in expansion order.
func (r *Rule) NonTerminals() []*NonTerminal {
	return r.nonTerminals
}

// Apply runs semantic action.
func (r *Rule) Apply(args ...any) (any, bool) {
	if r.Action == nil {
		return DefaultAction(r, args...)
	}
	return r.Action(args...)
}

// KeyOf runs key function.
func (r *Rule) KeyOf(value any) key.Key {
	if r.Key == nil {
		return key.FromValue(value)
	}
	return r.Key(value)
}

func (r *Rule) String() string {
	parts := make([]string, len(r.Expansion))
	for i, s := range r.Expansion {
		parts[i] = s.String()
	}
	name := ""
	if r.Name != "" {
		name = " (" + r.Name + ")"
	}
	return fmt.Sprintf("%s = %s%s", r.Symbol, strings.Join(parts, " "), name)
}

// DefaultAction returns the value of the only non-terminal slot, or the best rendering
// of terminal slots if the rule has no non-terminals, or a []any of non-terminal values.
func DefaultAction(r *Rule, args ...any) (any, bool) {
	var positions []int
	for i, s := range r.Expansion {
		if _, is := s.(*NonTerminal); is {
			positions = append(positions, i)
		}
	}

	switch len(positions) {
	case 0:
		words := make([]string, 0, len(r.Expansion))
		for _, s := range r.Expansion {
			switch x := s.(type) {
			case *Terminal:
				words = x.Phrase.AppendBest(words)
			case *Choice:
				words = x.Choice.AppendBest(words)
			}
		}
		return strings.Join(words, " "), true
	case 1:
		v := args[positions[0]]
		return v, v != nil
	default:
		result := make([]any, len(positions))
		for i, pos := range positions {
			result[i] = args[pos]
		}
		return result, true
	}
}

// Symbol describes a compiled grammar symbol.
type Symbol struct {
	Name  string
	Index int

	// External symbols have no rules, their derivations are seeded by the caller.
	External bool

	// MinDepth is the smallest depth of any derivation of the symbol.
	MinDepth int

	Rules []*Rule
}

// Grammar is a compiled rule table. It is immutable and safe for concurrent use.
type Grammar struct {
	root    int
	symbols []*Symbol
	index   map[string]int
	rules   []*Rule
}

// Root returns root symbol.
func (g *Grammar) Root() *Symbol {
	return g.symbols[g.root]
}

// Symbol returns a symbol by name.
func (g *Grammar) Symbol(name string) (*Symbol, bool) {
	i, has := g.index[name]
	if !has {
		return nil, false
	}
	return g.symbols[i], true
}

// Symbols returns all symbols, rule symbols first in order of definition, then external ones.
func (g *Grammar) Symbols() []*Symbol {
	return g.symbols
}

// Rules returns all rules in order of definition.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// Rule returns rule by index or nil.
func (g *Grammar) Rule(index int) *Rule {
	if index < 0 || index >= len(g.rules) {
		return nil
	}
	return g.rules[index]
}
