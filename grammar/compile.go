package grammar

import (
	"sort"

	"github.com/ava12/sentgen/internal/queue"
	"github.com/ava12/sentgen/render"
)

// Definition is an uncompiled grammar.
type Definition struct {
	// Root is the name of the root symbol, it must have rules.
	Root string

	// External lists symbols without rules whose derivations are seeded by the caller.
	External []string

	Rules []*Rule
}

// Compile validates grammar definition and builds rule table.
// Compile takes ownership of the rules: it assigns slot indexes and fills in default templates.
//
// Compilation fails if some referenced symbol is undefined, some symbol is not reachable from the root,
// some symbol cannot be derived at any finite depth, or some constraint or template refers to a wrong slot.
func Compile(def *Definition) (*Grammar, error) {
	g := &Grammar{index: make(map[string]int)}
	e := indexSymbols(g, def)
	e = checkRules(g, e)
	e = findUndefinedSymbols(g, e)
	e = findUnusedSymbols(g, e)
	e = computeMinDepths(g, e)
	if e != nil {
		return nil, e
	}

	return g, nil
}

func indexSymbols(g *Grammar, def *Definition) error {
	for i, r := range def.Rules {
		si, has := g.index[r.Symbol]
		if !has {
			si = len(g.symbols)
			g.index[r.Symbol] = si
			g.symbols = append(g.symbols, &Symbol{Name: r.Symbol, Index: si, MinDepth: Infinite})
		}

		r.index = i
		r.symbolIndex = si
		r.minDepth = Infinite
		g.symbols[si].Rules = append(g.symbols[si].Rules, r)
		g.rules = append(g.rules, r)
	}

	for _, name := range def.External {
		_, has := g.index[name]
		if has {
			return symbolDefinedError(name)
		}

		si := len(g.symbols)
		g.index[name] = si
		g.symbols = append(g.symbols, &Symbol{Name: name, Index: si, External: true, MinDepth: 0})
	}

	root, has := g.index[def.Root]
	if !has || g.symbols[root].External {
		return unknownRootError(def.Root)
	}

	g.root = root
	return nil
}

func checkRules(g *Grammar, e error) error {
	if e != nil {
		return e
	}

	for _, r := range g.rules {
		r.nonTerminals = r.nonTerminals[:0]
		for i, s := range r.Expansion {
			nt, is := s.(*NonTerminal)
			if is {
				nt.Index = i
				r.nonTerminals = append(r.nonTerminals, nt)
			}
		}

		for _, nt := range r.nonTerminals {
			if nt.Relative != nil && nt.Constant != nil {
				return constraintError(r, nt.Index, "both relative and constant key constraints are set")
			}

			if nt.Relative != nil {
				oi := nt.Relative.OtherIndex
				if oi == nt.Index || oi < 0 || oi >= len(r.Expansion) {
					return constraintError(r, nt.Index, "wrong slot reference")
				}

				_, is := r.Expansion[oi].(*NonTerminal)
				if !is {
					return constraintError(r, nt.Index, "referenced slot is not a non-terminal")
				}
			}
		}

		if r.Template == nil {
			r.Template = render.Sequential(len(r.Expansion))
		} else if r.Template.MaxIndex() >= len(r.Expansion) {
			return templateError(r, "placeholder refers to missing slot")
		}
	}

	return nil
}

func findUndefinedSymbols(g *Grammar, e error) error {
	if e != nil {
		return e
	}

	undefined := make(map[string]bool)
	for _, r := range g.rules {
		for _, nt := range r.nonTerminals {
			_, has := g.index[nt.Symbol]
			if !has {
				undefined[nt.Symbol] = true
			}
		}
	}

	if len(undefined) > 0 {
		return undefinedSymbolError(sortedKeys(undefined))
	}

	return nil
}

func findUnusedSymbols(g *Grammar, e error) error {
	if e != nil {
		return e
	}

	reached := make([]bool, len(g.symbols))
	searchQueue := queue.NewUnique[int](g.root)
	for {
		index, fetched := searchQueue.First()
		if !fetched {
			break
		}

		if reached[index] {
			continue
		}

		reached[index] = true
		for _, r := range g.symbols[index].Rules {
			for _, nt := range r.nonTerminals {
				searchQueue.Append(g.index[nt.Symbol])
			}
		}
	}

	unused := make(map[string]bool)
	for i, s := range g.symbols {
		if !reached[i] && !s.External {
			unused[s.Name] = true
		}
	}

	if len(unused) > 0 {
		return unusedSymbolError(sortedKeys(unused))
	}

	return nil
}

// computeMinDepths assigns minimum depths to symbols and rules.
// A rule without non-terminals has depth 0, any other rule has depth 1 + max depth of its non-terminals.
// Depths only decrease from Infinite, so the worklist converges.
func computeMinDepths(g *Grammar, e error) error {
	if e != nil {
		return e
	}

	affects := make(map[int][]*Rule)
	resolveQueue := queue.NewUnique[int]()

	for _, s := range g.symbols {
		if s.External {
			resolveQueue.Append(s.Index)
		}
	}

	for _, r := range g.rules {
		if len(r.nonTerminals) == 0 {
			r.minDepth = 0
			s := g.symbols[r.symbolIndex]
			if s.MinDepth > 0 {
				s.MinDepth = 0
				resolveQueue.Append(s.Index)
			}
			continue
		}

		for _, nt := range r.nonTerminals {
			k := g.index[nt.Symbol]
			affects[k] = append(affects[k], r)
		}
	}

	for {
		k, fetched := resolveQueue.First()
		if !fetched {
			break
		}

		for _, r := range affects[k] {
			depth := ruleDepth(g, r)
			if depth >= r.minDepth {
				continue
			}

			r.minDepth = depth
			s := g.symbols[r.symbolIndex]
			if depth < s.MinDepth {
				s.MinDepth = depth
				resolveQueue.Append(s.Index)
			}
		}
	}

	unproductive := make(map[string]bool)
	for _, s := range g.symbols {
		if s.MinDepth == Infinite {
			unproductive[s.Name] = true
		}
	}

	if len(unproductive) > 0 {
		return unproductiveSymbolError(sortedKeys(unproductive))
	}

	return nil
}

func ruleDepth(g *Grammar, r *Rule) int {
	result := 0
	for _, nt := range r.nonTerminals {
		d := g.symbols[g.index[nt.Symbol]].MinDepth
		if d == Infinite {
			return Infinite
		}
		if d > result {
			result = d
		}
	}
	return result + 1
}

func sortedKeys(m map[string]bool) []string {
	result := make([]string, 0, len(m))
	for name := range m {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
