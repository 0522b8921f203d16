package derivation

import (
	"github.com/ava12/sentgen"
	"github.com/ava12/sentgen/grammar"
)

const (
	InvalidValueError = sentgen.GenerationErrors + iota
	IncompatibleContextError
	InvalidPriorityError
)

func ruleName(r *grammar.Rule) string {
	if r == nil {
		return "<none>"
	}
	return r.String()
}

func invalidValueError(r *grammar.Rule) *sentgen.Error {
	return sentgen.FormatError(InvalidValueError, "semantic action of rule %q returned no value", ruleName(r))
}

func incompatibleContextError(r *grammar.Rule, c1, c2 *Context) *sentgen.Error {
	return sentgen.FormatError(IncompatibleContextError, "rule %q: incompatible contexts %s and %s", ruleName(r), c1, c2)
}

func invalidPriorityError(r *grammar.Rule, p float64) *sentgen.Error {
	return sentgen.FormatError(InvalidPriorityError, "rule %q: non-finite priority %v", ruleName(r), p)
}
