package grammar

import (
	"strings"

	"github.com/ava12/sentgen"
)

const (
	UnknownRootError = sentgen.GrammarErrors + iota
	SymbolDefinedError
	UndefinedSymbolError
	UnusedSymbolError
	UnproductiveSymbolError
	ConstraintError
	TemplateError
)

func unknownRootError(name string) *sentgen.Error {
	return sentgen.FormatError(UnknownRootError, "root symbol %q has no rules", name)
}

func symbolDefinedError(name string) *sentgen.Error {
	return sentgen.FormatError(SymbolDefinedError, "external symbol %q has rules or is declared twice", name)
}

func undefinedSymbolError(names []string) *sentgen.Error {
	return sentgen.FormatError(UndefinedSymbolError, "undefined symbols: %s", strings.Join(names, ", "))
}

func unusedSymbolError(names []string) *sentgen.Error {
	return sentgen.FormatError(UnusedSymbolError, "unused symbols: %s", strings.Join(names, ", "))
}

func unproductiveSymbolError(names []string) *sentgen.Error {
	return sentgen.FormatError(UnproductiveSymbolError, "symbols without finite derivations: %s", strings.Join(names, ", "))
}

func constraintError(r *Rule, slot int, msg string) *sentgen.Error {
	return sentgen.FormatError(ConstraintError, "rule %q, slot %d: %s", r.String(), slot, msg)
}

func templateError(r *Rule, msg string) *sentgen.Error {
	return sentgen.FormatError(TemplateError, "rule %q: %s", r.String(), msg)
}
