package generator

import (
	"github.com/ava12/sentgen"
)

const (
	DepthError = sentgen.GenerationErrors + 10 + iota
	SeedError
)

const (
	MalformedPartialError = sentgen.QueryErrors + iota
	UnknownSymbolError
	UnknownRuleError
	RuleMismatchError
	RejectedTreeError
	UnknownContextError
	SerializationError
)

func depthError(depth, maxDepth int) *sentgen.Error {
	return sentgen.FormatError(DepthError, "depth %d is out of range 0..%d", depth, maxDepth)
}

func seedError(symbol, msg string) *sentgen.Error {
	return sentgen.FormatError(SeedError, "cannot seed symbol %q: %s", symbol, msg)
}

func malformedPartialError(placeholders int) *sentgen.Error {
	return sentgen.FormatError(MalformedPartialError, "partial derivation must contain exactly one placeholder, got %d", placeholders)
}

func unknownSymbolError(name string) *sentgen.Error {
	return sentgen.FormatError(UnknownSymbolError, "unknown symbol %q", name)
}

func unknownRuleError(index int, symbol string) *sentgen.Error {
	return sentgen.FormatError(UnknownRuleError, "rule #%d does not expand symbol %q", index, symbol)
}

func ruleMismatchError(symbol string) *sentgen.Error {
	return sentgen.FormatError(RuleMismatchError, "no rule of symbol %q matches node children", symbol)
}

func rejectedTreeError(symbol string) *sentgen.Error {
	return sentgen.FormatError(RejectedTreeError, "node children violate constraints or semantic action of symbol %q", symbol)
}

func unknownContextError(id int) *sentgen.Error {
	return sentgen.FormatError(UnknownContextError, "unknown context #%d", id)
}

func serializationError(e error) *sentgen.Error {
	return sentgen.FormatError(SerializationError, "cannot serialize program: %s", e.Error())
}
