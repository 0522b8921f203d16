package generator

import (
	"encoding/json"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/render"
	"github.com/ava12/sentgen/tree"
)

// Serializer converts a derivation value to a program string.
type Serializer interface {
	Serialize(value any) (string, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(value any) (string, error)

func (f SerializerFunc) Serialize(value any) (string, error) {
	return f(value)
}

// JSONSerializer writes values as compact JSON.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(value any) (string, error) {
	data, e := json.Marshal(value)
	if e != nil {
		return "", e
	}
	return string(data), nil
}

// Serialize converts a derivation value using configured serializer.
func (gen *Generator) Serialize(d *derivation.Derivation) (string, error) {
	program, e := gen.options.Serializer.Serialize(d.Value)
	if e != nil {
		return "", serializationError(e)
	}
	return program, nil
}

// DerivationFromTree rebuilds a derivation from its provenance tree by re-running semantic actions bottom-up.
// A rule is located by its index if the node has one, otherwise by matching node children
// against right-hand sides of the node symbol rules. Context seeds are resolved using Options.Contexts.
func (gen *Generator) DerivationFromTree(root *tree.Node) (*derivation.Derivation, error) {
	e := tree.Validate(root)
	if e != nil {
		return nil, e
	}
	if !root.IsNonTerminal() {
		return nil, ruleMismatchError("")
	}
	return gen.replay(root)
}

// ProgramFromTree rebuilds a derivation from its provenance tree and serializes its value.
func (gen *Generator) ProgramFromTree(root *tree.Node) (string, error) {
	d, e := gen.DerivationFromTree(root)
	if e != nil {
		return "", e
	}
	return gen.Serialize(d)
}

func (gen *Generator) replay(n *tree.Node) (*derivation.Derivation, error) {
	s, has := gen.grammar.Symbol(n.NonTerminal)
	if !has {
		return nil, unknownSymbolError(n.NonTerminal)
	}

	if len(n.Children) == 0 && n.Rule == nil {
		return gen.replaySeed(s, n)
	}

	candidates := s.Rules
	if index, known := n.RuleIndex(); known {
		r := gen.grammar.Rule(index)
		if r == nil || r.Symbol != s.Name {
			return nil, unknownRuleError(index, s.Name)
		}
		candidates = []*grammar.Rule{r}
	}

	rejected := false
	for _, r := range candidates {
		if !matches(r, n.Children) {
			continue
		}

		children := make([]derivation.Child, len(r.Expansion))
		tuple := make([]*derivation.Derivation, 0, len(r.NonTerminals()))
		for i, slot := range r.Expansion {
			switch x := slot.(type) {
			case *grammar.Terminal:
				children[i] = derivation.Terminal{Text: x.Phrase}
			case *grammar.Choice:
				children[i] = derivation.Terminal{Text: chosen(x.Choice, n.Children[i].Terminal)}
			case *grammar.NonTerminal:
				child, e := gen.replay(n.Children[i])
				if e != nil {
					return nil, e
				}
				children[i] = child
				tuple = append(tuple, child)
			}
		}

		if !acceptable(r, tuple) {
			rejected = true
			continue
		}

		d, e := derivation.ApplyRule(r, children)
		if e != nil {
			return nil, e
		}
		if d != nil {
			return d, nil
		}
		rejected = true
	}

	if rejected {
		return nil, rejectedTreeError(s.Name)
	}
	return nil, ruleMismatchError(s.Name)
}

func (gen *Generator) replaySeed(s *grammar.Symbol, n *tree.Node) (*derivation.Derivation, error) {
	if n.Context != nil {
		c, has := gen.contexts[*n.Context]
		if !has {
			return nil, unknownContextError(*n.Context)
		}
		return derivation.NewContextSeed(c)
	}

	for _, d := range gen.options.Seeds[s.Name] {
		if d.Key.String() == n.Key {
			return d, nil
		}
	}
	return nil, ruleMismatchError(s.Name)
}

// matches checks node children against rule expansion: terminals by text, choices by any alternative,
// non-terminals by symbol.
func matches(r *grammar.Rule, children []*tree.Node) bool {
	if len(r.Expansion) != len(children) {
		return false
	}

	for i, slot := range r.Expansion {
		c := children[i]
		switch x := slot.(type) {
		case *grammar.Terminal:
			if c.IsNonTerminal() || c.Terminal != x.Phrase.Text {
				return false
			}
		case *grammar.Choice:
			if c.IsNonTerminal() || chosen(x.Choice, c.Terminal) == nil {
				return false
			}
		case *grammar.NonTerminal:
			if c.NonTerminal != x.Symbol {
				return false
			}
		}
	}
	return true
}

func chosen(c *render.Choice, text string) *render.Phrase {
	for _, p := range c.Alternatives {
		if p.Text == text {
			return p
		}
	}
	return nil
}
