// Package tree converts derivations to serializable provenance trees and back to token sequences.
package tree

import (
	"encoding/json"

	"github.com/ava12/sentgen"
	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/render"
)

const (
	MalformedTreeError = sentgen.QueryErrors + 50 + iota
)

// Node is a provenance tree node. A node with NonTerminal set is a derivation of that symbol,
// other nodes are terminals. Derivations produced by rules have Rule and Children set,
// seed derivations have neither; seeds created from contexts have Context set,
// other seeds have Key set.
type Node struct {
	NonTerminal string  `json:"nonTerminal,omitempty"`
	Rule        *int    `json:"rule,omitempty"`
	Context     *int    `json:"context,omitempty"`
	Key         string  `json:"key,omitempty"`
	Terminal    string  `json:"terminal,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

func (n *Node) IsNonTerminal() bool {
	return n.NonTerminal != ""
}

// RuleIndex returns rule index and a flag telling whether it is known.
func (n *Node) RuleIndex() (int, bool) {
	if n.Rule == nil {
		return 0, false
	}
	return *n.Rule, true
}

// FromDerivation builds a provenance tree of a derivation of the given symbol.
// symbol may be empty for derivations produced by rules.
// Terminals are rendered with their best alternative.
func FromDerivation(d *derivation.Derivation, symbol string) *Node {
	n := &Node{NonTerminal: symbol}
	if d.Rule == nil {
		if derivation.IsContextSeed(d) {
			id := d.Context.ID()
			n.Context = &id
		} else {
			n.Key = d.Key.String()
		}
		if n.NonTerminal == "" {
			n.NonTerminal = "?"
		}
		return n
	}

	index := d.Rule.Index()
	n.Rule = &index
	n.NonTerminal = d.Rule.Symbol
	n.Children = make([]*Node, 0, len(d.Children))
	for i, c := range d.Children {
		switch x := c.(type) {
		case derivation.Terminal:
			n.Children = append(n.Children, &Node{Terminal: render.Best(x.Text)})
		case *derivation.Derivation:
			n.Children = append(n.Children, FromDerivation(x, slotSymbol(d.Rule, i)))
		}
	}
	return n
}

func slotSymbol(r *grammar.Rule, i int) string {
	if i < len(r.Expansion) {
		if nt, is := r.Expansion[i].(*grammar.NonTerminal); is {
			return nt.Symbol
		}
	}
	return ""
}

// Parse decodes a JSON tree. Every node must be either a terminal or a non-terminal.
func Parse(data []byte) (*Node, error) {
	n := &Node{}
	e := json.Unmarshal(data, n)
	if e != nil {
		return nil, sentgen.FormatError(MalformedTreeError, "malformed derivation tree: %s", e.Error())
	}

	e = Validate(n)
	if e != nil {
		return nil, e
	}
	return n, nil
}

// Validate checks that no node is both a terminal and a non-terminal and that terminals have no children.
func Validate(root *Node) error {
	var result error
	Walk(root, WalkLtr, func(n *Node) (walkChildren, walkSiblings bool) {
		switch {
		case n == nil:
			result = sentgen.FormatError(MalformedTreeError, "empty derivation tree node")
		case n.IsNonTerminal() && n.Terminal != "":
			result = sentgen.FormatError(MalformedTreeError, "node %q is both a terminal and a non-terminal", n.NonTerminal)
		case !n.IsNonTerminal() && (len(n.Children) > 0 || n.Rule != nil || n.Context != nil || n.Key != ""):
			result = sentgen.FormatError(MalformedTreeError, "terminal %q has non-terminal attributes", n.Terminal)
		}
		return result == nil, result == nil
	})
	return result
}

func (n *Node) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}

func (n *Node) String() string {
	data, e := json.Marshal(n)
	if e != nil {
		return e.Error()
	}
	return string(data)
}

type NodeVisitor func(n *Node) (walkChildren, walkSiblings bool)

type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

// Walk visits nodes in depth-first order.
func Walk(n *Node, mode WalkMode, visitor NodeVisitor) {
	visitNode(n, visitor, (mode&WalkRtl) != 0)
}

func visitNode(n *Node, v NodeVisitor, rtl bool) (visitSiblings bool) {
	vc, vs := v(n)
	if !vc || n == nil {
		return vs
	}

	if rtl {
		for i := len(n.Children) - 1; i >= 0 && vc; i-- {
			vc = visitNode(n.Children[i], v, true)
		}
	} else {
		for i := 0; i < len(n.Children) && vc; i++ {
			vc = visitNode(n.Children[i], v, false)
		}
	}

	return vs
}

type NodeFilter func(n *Node) bool

// IsA matches non-terminal nodes of any of given symbols.
func IsA(symbols ...string) NodeFilter {
	return func(n *Node) bool {
		for _, s := range symbols {
			if n.NonTerminal == s {
				return true
			}
		}
		return false
	}
}

// IsALiteral matches terminal nodes with any of given texts.
func IsALiteral(texts ...string) NodeFilter {
	return func(n *Node) bool {
		if n.IsNonTerminal() {
			return false
		}
		for _, text := range texts {
			if n.Terminal == text {
				return true
			}
		}
		return false
	}
}

// Search returns nodes matching the filter in left to right order.
// Descendants of matching nodes are searched only if deepSearch is set.
func Search(root *Node, nf NodeFilter, deepSearch bool) []*Node {
	var result []*Node
	Walk(root, WalkLtr, func(n *Node) (bool, bool) {
		if nf(n) {
			result = append(result, n)
			return deepSearch, true
		}
		return true, true
	})
	return result
}

// Tokens returns terminal texts and placeholders of unexpanded non-terminals, left to right.
func Tokens(root *Node) []string {
	var result []string
	Walk(root, WalkLtr, func(n *Node) (bool, bool) {
		if len(n.Children) > 0 {
			return true, true
		}
		if n.IsNonTerminal() {
			result = append(result, "NT["+n.NonTerminal+"]")
		} else if n.Terminal != "" {
			result = append(result, n.Terminal)
		}
		return false, true
	})
	return result
}

// Flatten returns the sequence of partial derivations leading from the root symbol to the sentence,
// expanding the leftmost expandable non-terminal at every step.
// Unexpanded non-terminals are written as NT[symbol], empty terminals are skipped.
func Flatten(root *Node) [][]string {
	var result [][]string
	frontier := []*Node{root}
	for {
		result = append(result, frontierTokens(frontier))

		at := -1
		for i, n := range frontier {
			if len(n.Children) > 0 {
				at = i
				break
			}
		}
		if at < 0 {
			return result
		}

		next := make([]*Node, 0, len(frontier)+len(frontier[at].Children)-1)
		next = append(next, frontier[:at]...)
		next = append(next, frontier[at].Children...)
		next = append(next, frontier[at+1:]...)
		frontier = next
	}
}

func frontierTokens(frontier []*Node) []string {
	result := make([]string, 0, len(frontier))
	for _, n := range frontier {
		if n.IsNonTerminal() {
			result = append(result, "NT["+n.NonTerminal+"]")
		} else if n.Terminal != "" {
			result = append(result, n.Terminal)
		}
	}
	return result
}
