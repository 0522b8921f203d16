package langdef

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/key"
)

type valueTemplate interface {
	eval(args []any) any
}

type slotValue int

func (sv slotValue) eval(args []any) any {
	return args[sv]
}

type constValue struct {
	value any
}

func (cv constValue) eval([]any) any {
	return cv.value
}

type mapValue struct {
	names  []string
	values []valueTemplate
}

func (mv mapValue) eval(args []any) any {
	result := make(map[string]any, len(mv.names))
	for i, name := range mv.names {
		result[name] = mv.values[i].eval(args)
	}
	return result
}

type listValue []valueTemplate

func (lv listValue) eval(args []any) any {
	result := make([]any, len(lv))
	for i, v := range lv {
		result[i] = v.eval(args)
	}
	return result
}

func templateAction(t valueTemplate) grammar.SemanticAction {
	return func(args ...any) (any, bool) {
		return t.eval(args), true
	}
}

func (p *parser) parseValue(n *yaml.Node, rs *ruleSlots) (valueTemplate, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" && strings.HasPrefix(n.Value, "$") {
			index, e := p.resolveRef(n, n.Value[1:], rs)
			if e != nil {
				return nil, e
			}
			return slotValue(index), nil
		}

		var v any
		e := n.Decode(&v)
		if e != nil {
			return nil, p.wrongValueError(n, e.Error())
		}
		return constValue{v}, nil

	case yaml.MappingNode:
		result := mapValue{}
		for i := 0; i < len(n.Content); i += 2 {
			v, e := p.parseValue(n.Content[i+1], rs)
			if e != nil {
				return nil, e
			}
			result.names = append(result.names, n.Content[i].Value)
			result.values = append(result.values, v)
		}
		return result, nil

	case yaml.SequenceNode:
		result := make(listValue, len(n.Content))
		for i, c := range n.Content {
			v, e := p.parseValue(c, rs)
			if e != nil {
				return nil, e
			}
			result[i] = v
		}
		return result, nil

	default:
		return nil, p.structureError(n, "scalar, mapping, or sequence")
	}
}

type keyField struct {
	name  string
	path  []string
	whole bool
	value any
}

func (kf keyField) eval(v any) any {
	if !kf.whole {
		return kf.value
	}

	for _, member := range kf.path {
		m, is := v.(map[string]any)
		if !is {
			return nil
		}
		v = m[member]
	}
	return v
}

func (p *parser) parseKey(n *yaml.Node) (grammar.KeyFunction, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.structureError(n, "key field mapping")
	}

	fields := make([]keyField, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		name := n.Content[i].Value
		vn := n.Content[i+1]
		if vn.Kind != yaml.ScalarNode {
			return nil, p.structureError(vn, "scalar key field value")
		}

		if vn.ShortTag() == "!!str" && (vn.Value == "$" || strings.HasPrefix(vn.Value, "$.")) {
			var path []string
			if vn.Value != "$" {
				path = strings.Split(vn.Value[2:], ".")
			}
			fields = append(fields, keyField{name: name, path: path, whole: true})
			continue
		}

		var v any
		e := vn.Decode(&v)
		if e != nil {
			return nil, p.wrongValueError(vn, e.Error())
		}
		fields = append(fields, keyField{name: name, value: v})
	}

	return func(value any) key.Key {
		values := make(map[string]key.Value, len(fields))
		for _, f := range fields {
			values[f.name] = f.eval(value)
		}
		return key.New(values)
	}, nil
}
