package render

import (
	"sort"
	"strconv"
	"strings"
)

// Part is an element of a template: either a literal render tree or a placeholder.
type Part struct {
	// Literal is rendered as is when Placeholder is false.
	Literal Replaceable

	// Placeholder marks the part as a reference to the fragment with index Index.
	Placeholder bool
	Index       int

	// Constraints restrict the referenced fragment to given flag values.
	Constraints Flags
}

// Slot creates a placeholder part.
func Slot(index int, constraints Flags) Part {
	return Part{Placeholder: true, Index: index, Constraints: constraints}
}

// Text creates a literal part.
func Text(r Replaceable) Part {
	return Part{Literal: r}
}

// Template describes how fragments of child derivations are interleaved with rule-local text.
type Template struct {
	Parts []Part

	// Flags are assigned to every render tree produced by the template.
	Flags Flags
}

// Sequential creates a template referencing fragments 0..n-1 in order.
func Sequential(n int) *Template {
	parts := make([]Part, n)
	for i := range parts {
		parts[i] = Slot(i, nil)
	}
	return &Template{Parts: parts}
}

// MaxIndex returns the largest placeholder index or -1 if template has no placeholders.
func (t *Template) MaxIndex() int {
	result := -1
	for _, p := range t.Parts {
		if p.Placeholder && p.Index > result {
			result = p.Index
		}
	}
	return result
}

// Replace substitutes fragments into the template.
// Returns false if some fragment is missing or cannot satisfy placeholder constraints.
func (t *Template) Replace(fragments []Replaceable) (Replaceable, bool) {
	parts := make([]Replaceable, 0, len(t.Parts))
	for _, p := range t.Parts {
		if !p.Placeholder {
			if p.Literal != nil {
				parts = append(parts, p.Literal)
			}
			continue
		}

		if p.Index < 0 || p.Index >= len(fragments) {
			return nil, false
		}

		fragment := fragments[p.Index]
		if fragment == nil {
			fragment = &Phrase{}
		}
		for _, name := range sortedNames(p.Constraints) {
			var ok bool
			fragment, ok = fragment.Constrain(name, p.Constraints[name])
			if !ok {
				return nil, false
			}
		}
		parts = append(parts, fragment)
	}

	return &Concat{Parts: parts, Flags: t.Flags}, true
}

// Accepts reports whether r satisfies constraints of every placeholder referencing fragment index.
func (t *Template) Accepts(index int, r Replaceable) bool {
	for _, p := range t.Parts {
		if !p.Placeholder || p.Index != index {
			continue
		}

		fragment := r
		for _, name := range sortedNames(p.Constraints) {
			var ok bool
			fragment, ok = fragment.Constrain(name, p.Constraints[name])
			if !ok {
				return false
			}
		}
	}
	return true
}

func (t *Template) String() string {
	parts := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		if p.Placeholder {
			parts[i] = "$" + strconv.Itoa(p.Index) + p.Constraints.String()
		} else if p.Literal != nil {
			parts[i] = p.Literal.String()
		}
	}
	return strings.Join(parts, " ") + t.Flags.String()
}

func sortedNames(fs Flags) []string {
	if len(fs) == 0 {
		return nil
	}

	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
