package generator

import (
	"math/rand/v2"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/key"
)

// pools lists child candidates of every non-terminal slot for tuples whose first slot
// of depth d-1 is slot j: slots before j draw from depths below d-1,
// slot j draws from depth d-1, slots after j draw from all depths below d.
type pools struct {
	below [][]*derivation.Derivation
	last  [][]*derivation.Derivation
	all   [][]*derivation.Derivation
}

func (gen *Generator) collectPools(r *grammar.Rule, depth int) pools {
	nts := r.NonTerminals()
	p := pools{
		below: make([][]*derivation.Derivation, len(nts)),
		last:  make([][]*derivation.Derivation, len(nts)),
		all:   make([][]*derivation.Derivation, len(nts)),
	}

	for i, nt := range nts {
		s, _ := gen.grammar.Symbol(nt.Symbol)
		tables := gen.tables[s.Index]
		for d := 0; d < depth-1; d++ {
			p.below[i] = append(p.below[i], tables[d]...)
		}
		p.last[i] = tables[depth-1]
		p.all[i] = append(p.below[i][:len(p.below[i]):len(p.below[i])], p.last[i]...)
	}

	return p
}

// choose returns candidate lists of every slot for the given first slot of depth d-1.
func (p pools) choose(j int) [][]*derivation.Derivation {
	result := make([][]*derivation.Derivation, len(p.last))
	copy(result, p.below[:j])
	result[j] = p.last[j]
	copy(result[j+1:], p.all[j+1:])
	return result
}

func tupleCount(candidates [][]*derivation.Derivation) int64 {
	var result int64 = 1
	for _, c := range candidates {
		n := int64(len(c))
		if n == 0 {
			return 0
		}
		if result > (1<<62)/n {
			return 1 << 62
		}
		result *= n
	}
	return result
}

// applyRule tries child tuples of depth d against the rule and adds resulting derivations to the cell.
// If there are more tuples than the target pruning size, random tuples are tried instead.
func (gen *Generator) applyRule(r *grammar.Rule, depth int, rng *rand.Rand, c *cell) error {
	if depth == 0 {
		return gen.tryTuple(r, nil, c)
	}

	p := gen.collectPools(r, depth)
	n := len(r.NonTerminals())
	choices := make([][][]*derivation.Derivation, n)
	counts := make([]int64, n)
	var total int64
	for j := range n {
		choices[j] = p.choose(j)
		counts[j] = tupleCount(choices[j])
		total += counts[j]
		if total < 0 || total > 1<<62 {
			total = 1 << 62
		}
	}

	if total == 0 {
		return nil
	}

	target := int64(gen.options.TargetPruningSize)
	if total > target {
		return gen.sampleTuples(r, choices, counts, total, target, rng, c)
	}

	for j := range n {
		if counts[j] == 0 {
			continue
		}
		e := gen.enumerateTuples(r, choices[j], c)
		if e != nil {
			return e
		}
	}
	return nil
}

func (gen *Generator) enumerateTuples(r *grammar.Rule, candidates [][]*derivation.Derivation, c *cell) error {
	indexes := make([]int, len(candidates))
	tuple := make([]*derivation.Derivation, len(candidates))
	for {
		for i, index := range indexes {
			tuple[i] = candidates[i][index]
		}

		e := gen.tryTuple(r, tuple, c)
		if e != nil {
			return e
		}

		i := len(indexes) - 1
		for ; i >= 0; i-- {
			indexes[i]++
			if indexes[i] < len(candidates[i]) {
				break
			}
			indexes[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

func (gen *Generator) sampleTuples(r *grammar.Rule, choices [][][]*derivation.Derivation, counts []int64,
	total, target int64, rng *rand.Rand, c *cell) error {

	tuple := make([]*derivation.Derivation, len(choices))
	for range target {
		pick := rng.Int64N(total)
		j := 0
		for pick >= counts[j] {
			pick -= counts[j]
			j++
		}

		for i, candidates := range choices[j] {
			tuple[i] = candidates[rng.IntN(len(candidates))]
		}

		e := gen.tryTuple(r, tuple, c)
		if e != nil {
			return e
		}
	}
	return nil
}

// tryTuple checks key constraints and context compatibility, then combines children.
// tuple contains one derivation per non-terminal slot.
func (gen *Generator) tryTuple(r *grammar.Rule, tuple []*derivation.Derivation, c *cell) error {
	gen.tuples.Add(1)
	if !acceptable(r, tuple) {
		gen.rejected.Add(1)
		return nil
	}

	children := make([]derivation.Child, len(r.Expansion))
	k := 0
	for i, s := range r.Expansion {
		switch x := s.(type) {
		case *grammar.Terminal:
			children[i] = derivation.Terminal{Text: x.Phrase}
		case *grammar.Choice:
			children[i] = derivation.Terminal{Text: x.Choice}
		case *grammar.NonTerminal:
			children[i] = tuple[k]
			k++
		}
	}

	d, e := derivation.ApplyRule(r, children)
	if e != nil {
		return e
	}
	if d == nil {
		gen.rejected.Add(1)
		return nil
	}

	c.add(d)
	return nil
}

func acceptable(r *grammar.Rule, tuple []*derivation.Derivation) bool {
	var ctx *derivation.Context
	nts := r.NonTerminals()
	for i, nt := range nts {
		child := tuple[i]
		merged, compatible := derivation.Meet(ctx, child.Context)
		if !compatible {
			return false
		}
		ctx = merged

		if !nt.Accepts(child.Key) {
			return false
		}

		if nt.Relative != nil {
			other := slotChild(nts, tuple, nt.Relative.OtherIndex)
			if other == nil || !key.FieldEqual(child.Key, nt.Relative.Field, other.Key, nt.Relative.OtherField) {
				return false
			}
		}
	}
	return true
}

func slotChild(nts []*grammar.NonTerminal, tuple []*derivation.Derivation, slot int) *derivation.Derivation {
	for i, nt := range nts {
		if nt.Index == slot {
			return tuple[i]
		}
	}
	return nil
}
