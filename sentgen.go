/*
Package sentgen generates synthetic natural-language corpora by combinatorially
expanding a context-free grammar whose rules carry semantic actions.

Consists of subpackages:
  - cmd/sentgen: console utility generating datasets and serving partial completions;
  - key: derivation keys used for deduplication and agreement constraints;
  - render: render trees (phrases, choices, templates) and their flattening;
  - grammar: rule table consumed by the generator, validation and minimum depths;
  - derivation: contexts, derivations, and the combine operation;
  - generator: depth-bounded expansion driver and interactive partial expansion;
  - langdef: converts YAML grammar description to compiled grammar;
  - tree: serializable provenance trees and partial-derivation flattening;
  - dataset: corpus sinks (TSV, SQLite);
  - i18n: language packs selected by locale.

Typical usage is:

1. Describe grammar rules either in Go (grammar.Rule values) or in YAML (langdef).

2. Compile the grammar; compilation assigns slot indexes and computes minimum depths.

3. Create a generator with desired maximum depth, pruning size, and random seed.

4. Generate root derivations, render them and pass their values to a serializer.
*/
package sentgen

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	DefinitionErrors = 1   // used by langdef
	GrammarErrors    = 101 // used by grammar
	GenerationErrors = 201 // used by derivation and generator
	QueryErrors      = 301 // used by generator and tree
	DatasetErrors    = 401 // used by dataset
	LocaleErrors     = 501 // used by i18n
)

// Error is the error type used by sentgen subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// HasCode reports whether e is an *Error with given code.
func HasCode(e error, code int) bool {
	se, valid := e.(*Error)
	return valid && se.Code == code
}
