package langdef

import (
	"gopkg.in/yaml.v3"

	"github.com/ava12/sentgen"
)

const (
	SyntaxError = sentgen.DefinitionErrors + iota
	StructureError
	UnknownFieldError
	WrongSlotError
	WrongReferenceError
	UnknownActionError
	UnknownKeyFunctionError
	WrongValueError
	WrongTemplateError
	WrongConstraintError
)

type nodePos struct {
	name string
	node *yaml.Node
}

func (p nodePos) SourceName() string {
	return p.name
}

func (p nodePos) Line() int {
	return p.node.Line
}

func (p nodePos) Col() int {
	return p.node.Column
}

func syntaxError(name string, e error) *sentgen.Error {
	return sentgen.FormatError(SyntaxError, "%s: %s", name, e.Error())
}

func (p *parser) structureError(n *yaml.Node, expected string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, StructureError, "expecting %s", expected)
}

func (p *parser) unknownFieldError(n *yaml.Node) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, UnknownFieldError, "unknown field %q", n.Value)
}

func (p *parser) wrongSlotError(n *yaml.Node, msg string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, WrongSlotError, "wrong slot %q: %s", n.Value, msg)
}

func (p *parser) wrongReferenceError(n *yaml.Node, ref string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, WrongReferenceError, "%q does not refer to a non-terminal slot", ref)
}

func (p *parser) unknownActionError(n *yaml.Node) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, UnknownActionError, "semantic action %q is not registered", n.Value)
}

func (p *parser) unknownKeyFunctionError(n *yaml.Node) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, UnknownKeyFunctionError, "key function %q is not registered", n.Value)
}

func (p *parser) wrongValueError(n *yaml.Node, msg string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, WrongValueError, "wrong value: %s", msg)
}

func (p *parser) wrongTemplateError(n *yaml.Node, msg string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, WrongTemplateError, "wrong template part %q: %s", n.Value, msg)
}

func (p *parser) wrongConstraintError(n *yaml.Node, msg string) *sentgen.Error {
	return sentgen.FormatErrorPos(nodePos{p.name, n}, WrongConstraintError, "wrong constraint: %s", msg)
}
