package dataset

import (
	"github.com/ava12/sentgen"
)

const (
	OpenError = sentgen.DatasetErrors + iota
	WriteError
	CloseError
	ReadError
)

func openError(name string, e error) *sentgen.Error {
	return sentgen.FormatError(OpenError, "cannot open dataset %s: %s", name, e.Error())
}

func writeError(id string, e error) *sentgen.Error {
	return sentgen.FormatError(WriteError, "cannot write example %s: %s", id, e.Error())
}

func closeError(e error) *sentgen.Error {
	return sentgen.FormatError(CloseError, "cannot finish dataset: %s", e.Error())
}

func readError(line int, msg string) *sentgen.Error {
	return sentgen.FormatError(ReadError, "malformed dataset line %d: %s", line, msg)
}
