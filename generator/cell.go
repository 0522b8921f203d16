package generator

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ava12/sentgen/derivation"
)

type identity struct {
	key     string
	context *derivation.Context
}

// cell collects derivations of one symbol at one depth.
// Derivations with equal key and context are merged, the one with higher priority survives.
type cell struct {
	items []*derivation.Derivation
	index map[identity]int
}

func newCell() *cell {
	return &cell{index: make(map[identity]int)}
}

// add reports whether the derivation is kept.
func (c *cell) add(d *derivation.Derivation) bool {
	id := identity{d.Key.String(), d.Context}
	i, has := c.index[id]
	if !has {
		c.index[id] = len(c.items)
		c.items = append(c.items, d)
		return true
	}

	if d.Priority > c.items[i].Priority {
		c.items[i] = d
		return true
	}

	return false
}

func (c *cell) len() int {
	return len(c.items)
}

// prune reduces the cell to at most target derivations using weighted sampling without replacement,
// weight of a derivation is exp(priority). Returns the number of dropped derivations.
func (c *cell) prune(target int, rng *rand.Rand) int {
	if len(c.items) <= target {
		return 0
	}

	maxPriority := math.Inf(-1)
	for _, d := range c.items {
		maxPriority = max(maxPriority, d.Priority)
	}

	type ranked struct {
		index int
		rank  float64
	}
	ranks := make([]ranked, len(c.items))
	for i, d := range c.items {
		u := 1 - rng.Float64()
		rank := math.Log(u) * math.Exp(maxPriority-d.Priority)
		if math.IsNaN(rank) {
			rank = math.Inf(-1)
		}
		ranks[i] = ranked{i, rank}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].rank > ranks[j].rank
	})

	keep := make([]bool, len(c.items))
	for _, r := range ranks[:target] {
		keep[r.index] = true
	}

	dropped := len(c.items) - target
	items := make([]*derivation.Derivation, 0, target)
	for i, d := range c.items {
		if keep[i] {
			items = append(items, d)
		}
	}
	c.items = items
	c.index = nil
	return dropped
}

// sorted returns derivations in order of decreasing priority, stable on production order.
func (c *cell) sorted() []*derivation.Derivation {
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].Priority > c.items[j].Priority
	})
	return c.items
}
