package langdef

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/render"
)

// DefaultRoot is the root symbol of descriptions without root field.
const DefaultRoot = "root"

// Options provide Go functions referenced by name from grammar description.
type Options struct {
	Actions      map[string]grammar.SemanticAction
	KeyFunctions map[string]grammar.KeyFunction
}

// ParseString parses grammar description and returns compiled grammar on success.
// Returns nil and sentgen.Error on error.
func ParseString(name, content string, opts *Options) (*grammar.Grammar, error) {
	return Parse(name, []byte(content), opts)
}

// ParseFile reads and parses grammar description file.
func ParseFile(path string, opts *Options) (*grammar.Grammar, error) {
	content, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}
	return Parse(path, content, opts)
}

// Parse parses grammar description and returns compiled grammar on success.
// Returns nil and sentgen.Error on error.
func Parse(name string, content []byte, opts *Options) (*grammar.Grammar, error) {
	def, e := ParseDefinition(name, content, opts)
	if e != nil {
		return nil, e
	}
	return grammar.Compile(def)
}

// ParseDefinition parses grammar description without compiling it.
func ParseDefinition(name string, content []byte, opts *Options) (*grammar.Definition, error) {
	if opts == nil {
		opts = &Options{}
	}

	var doc yaml.Node
	e := yaml.Unmarshal(content, &doc)
	if e != nil {
		return nil, syntaxError(name, e)
	}

	p := &parser{name: name, opts: opts}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, p.structureError(&doc, "grammar description")
	}
	return p.parseGrammar(doc.Content[0])
}

type parser struct {
	name string
	opts *Options
}

// ruleSlots is the expansion of a rule being parsed.
type ruleSlots struct {
	slots    []grammar.Slot
	bindings map[string]int
}

func (p *parser) mapping(n *yaml.Node, fields ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.structureError(n, "mapping")
	}

	result := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		known := false
		for _, f := range fields {
			if k.Value == f {
				known = true
				break
			}
		}
		if !known {
			return nil, p.unknownFieldError(k)
		}
		result[k.Value] = n.Content[i+1]
	}
	return result, nil
}

func (p *parser) scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.structureError(n, "scalar")
	}
	return n.Value, nil
}

func (p *parser) parseGrammar(n *yaml.Node) (*grammar.Definition, error) {
	fields, e := p.mapping(n, "root", "external", "rules")
	if e != nil {
		return nil, e
	}

	def := &grammar.Definition{Root: DefaultRoot}
	if rn, has := fields["root"]; has {
		def.Root, e = p.scalar(rn)
		if e != nil {
			return nil, e
		}
	}

	if en, has := fields["external"]; has {
		if en.Kind != yaml.SequenceNode {
			return nil, p.structureError(en, "list of symbols")
		}
		for _, sn := range en.Content {
			name, e := p.scalar(sn)
			if e != nil {
				return nil, e
			}
			def.External = append(def.External, name)
		}
	}

	rn, has := fields["rules"]
	if !has {
		return nil, p.structureError(n, "rules field")
	}
	if rn.Kind != yaml.MappingNode {
		return nil, p.structureError(rn, "mapping of symbols to rules")
	}

	for i := 0; i < len(rn.Content); i += 2 {
		symbol := rn.Content[i].Value
		list := rn.Content[i+1]
		if list.Kind != yaml.SequenceNode {
			return nil, p.structureError(list, "list of rules")
		}

		for _, item := range list.Content {
			r, e := p.parseRule(symbol, item)
			if e != nil {
				return nil, e
			}
			def.Rules = append(def.Rules, r)
		}
	}

	return def, nil
}

func (p *parser) parseRule(symbol string, n *yaml.Node) (*grammar.Rule, error) {
	fields, e := p.mapping(n, "expansion", "name", "priority", "value", "action", "key", "keyFunction",
		"constraints", "template", "flags")
	if e != nil {
		return nil, e
	}

	en, has := fields["expansion"]
	if !has {
		return nil, p.structureError(n, "expansion field")
	}
	rs, e := p.parseExpansion(en)
	if e != nil {
		return nil, e
	}

	r := &grammar.Rule{Symbol: symbol, Expansion: rs.slots}
	e = p.parseAttributes(r, fields)
	e = p.parseSemantics(r, fields, rs, e)
	e = p.parseConstraints(fields["constraints"], rs, e)
	e = p.parseTemplate(r, fields, rs, e)
	if e != nil {
		return nil, e
	}

	return r, nil
}

func (p *parser) parseAttributes(r *grammar.Rule, fields map[string]*yaml.Node) error {
	var e error
	if nn, has := fields["name"]; has {
		r.Name, e = p.scalar(nn)
		if e != nil {
			return e
		}
	}

	if pn, has := fields["priority"]; has {
		e = pn.Decode(&r.Priority)
		if e != nil {
			return p.wrongValueError(pn, "priority must be a number")
		}
	}

	return nil
}

func (p *parser) parseExpansion(n *yaml.Node) (*ruleSlots, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, p.structureError(n, "list of slots")
	}

	rs := &ruleSlots{bindings: make(map[string]int)}
	for i, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if !strings.HasPrefix(item.Value, "$") {
				rs.slots = append(rs.slots, grammar.Literal(item.Value))
				continue
			}

			name, symbol, bound := strings.Cut(item.Value[1:], ":")
			if !bound {
				symbol = name
				name = ""
			}
			if symbol == "" {
				return nil, p.wrongSlotError(item, "symbol name expected")
			}

			if name != "" {
				if _, has := rs.bindings[name]; has {
					return nil, p.wrongSlotError(item, "name is already bound")
				}
				if _, e := strconv.Atoi(name); e == nil {
					return nil, p.wrongSlotError(item, "numeric names are not allowed")
				}
				rs.bindings[name] = i
			}
			rs.slots = append(rs.slots, grammar.NT(symbol).Named(name))

		case yaml.MappingNode:
			phrase, e := p.parsePhrase(item)
			if e != nil {
				return nil, e
			}
			rs.slots = append(rs.slots, &grammar.Terminal{Phrase: phrase})

		case yaml.SequenceNode:
			if len(item.Content) == 0 {
				return nil, p.wrongSlotError(item, "empty choice")
			}
			alts := make([]*render.Phrase, len(item.Content))
			for j, an := range item.Content {
				var e error
				alts[j], e = p.parsePhrase(an)
				if e != nil {
					return nil, e
				}
			}
			rs.slots = append(rs.slots, &grammar.Choice{Choice: &render.Choice{Alternatives: alts}})

		default:
			return nil, p.structureError(item, "slot")
		}
	}

	return rs, nil
}

func (p *parser) parsePhrase(n *yaml.Node) (*render.Phrase, error) {
	if n.Kind == yaml.ScalarNode {
		return render.NewPhrase(n.Value), nil
	}

	fields, e := p.mapping(n, "text", "flags")
	if e != nil {
		return nil, e
	}

	result := &render.Phrase{}
	if tn, has := fields["text"]; has {
		result.Text, e = p.scalar(tn)
		if e != nil {
			return nil, e
		}
	}
	if fn, has := fields["flags"]; has {
		result.Flags, e = p.parseFlags(fn)
		if e != nil {
			return nil, e
		}
	}
	return result, nil
}

func (p *parser) parseFlags(n *yaml.Node) (render.Flags, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.structureError(n, "flag mapping")
	}

	result := make(render.Flags, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		v, e := p.scalar(n.Content[i+1])
		if e != nil {
			return nil, e
		}
		result[n.Content[i].Value] = v
	}
	return result, nil
}

// resolveRef converts slot number or binding name to the index of a non-terminal slot.
func (p *parser) resolveRef(n *yaml.Node, ref string, rs *ruleSlots) (int, error) {
	index, e := strconv.Atoi(ref)
	if e != nil {
		var has bool
		index, has = rs.bindings[ref]
		if !has {
			return 0, p.wrongReferenceError(n, ref)
		}
	}

	if index < 0 || index >= len(rs.slots) {
		return 0, p.wrongReferenceError(n, ref)
	}
	if _, is := rs.slots[index].(*grammar.NonTerminal); !is {
		return 0, p.wrongReferenceError(n, ref)
	}
	return index, nil
}

func (p *parser) parseSemantics(r *grammar.Rule, fields map[string]*yaml.Node, rs *ruleSlots, e error) error {
	if e != nil {
		return e
	}

	vn, hasValue := fields["value"]
	an, hasAction := fields["action"]
	if hasValue && hasAction {
		return p.wrongValueError(an, "both value and action are set")
	}

	if hasAction {
		r.Action = p.opts.Actions[an.Value]
		if r.Action == nil {
			return p.unknownActionError(an)
		}
	}

	if hasValue {
		if vn.Kind == yaml.ScalarNode && vn.ShortTag() == "!!null" {
			return p.wrongValueError(vn, "value must not be null")
		}
		t, e := p.parseValue(vn, rs)
		if e != nil {
			return e
		}
		r.Action = templateAction(t)
	}

	kn, hasKey := fields["key"]
	fn, hasFunction := fields["keyFunction"]
	if hasKey && hasFunction {
		return p.wrongValueError(fn, "both key and keyFunction are set")
	}

	if hasFunction {
		r.Key = p.opts.KeyFunctions[fn.Value]
		if r.Key == nil {
			return p.unknownKeyFunctionError(fn)
		}
	}

	if hasKey {
		r.Key, e = p.parseKey(kn)
	}
	return e
}

func (p *parser) parseConstraints(n *yaml.Node, rs *ruleSlots, e error) error {
	if e != nil || n == nil {
		return e
	}

	if n.Kind != yaml.SequenceNode {
		return p.structureError(n, "list of constraints")
	}

	for _, cn := range n.Content {
		fields, e := p.mapping(cn, "slot", "field", "equals", "other", "otherField")
		if e != nil {
			return e
		}

		sn, hasSlot := fields["slot"]
		fn, hasField := fields["field"]
		if !hasSlot || !hasField {
			return p.wrongConstraintError(cn, "slot and field must be set")
		}
		index, e := p.resolveRef(sn, sn.Value, rs)
		if e != nil {
			return e
		}
		nt := rs.slots[index].(*grammar.NonTerminal)
		if nt.Constant != nil || nt.Relative != nil {
			return p.wrongConstraintError(cn, "slot is already constrained")
		}

		en, hasEquals := fields["equals"]
		on, hasOther := fields["other"]
		switch {
		case hasEquals == hasOther:
			return p.wrongConstraintError(cn, "exactly one of equals and other must be set")

		case hasEquals:
			var v any
			e = en.Decode(&v)
			if e != nil {
				return p.wrongValueError(en, e.Error())
			}
			nt.Equals(fn.Value, v)

		default:
			other, e := p.resolveRef(on, on.Value, rs)
			if e != nil {
				return e
			}
			otherField := fn.Value
			if ofn, has := fields["otherField"]; has {
				otherField = ofn.Value
			}
			nt.Agrees(fn.Value, other, otherField)
		}
	}

	return nil
}

func (p *parser) parseTemplate(r *grammar.Rule, fields map[string]*yaml.Node, rs *ruleSlots, e error) error {
	if e != nil {
		return e
	}

	var flags render.Flags
	if fn, has := fields["flags"]; has {
		flags, e = p.parseFlags(fn)
		if e != nil {
			return e
		}
	}

	tn, has := fields["template"]
	if !has {
		if flags != nil {
			r.Template = render.Sequential(len(rs.slots))
			r.Template.Flags = flags
		}
		return nil
	}

	if tn.Kind != yaml.SequenceNode {
		return p.structureError(tn, "list of template parts")
	}

	t := &render.Template{Flags: flags}
	for _, pn := range tn.Content {
		if pn.Kind == yaml.MappingNode {
			phrase, e := p.parsePhrase(pn)
			if e != nil {
				return e
			}
			t.Parts = append(t.Parts, render.Text(phrase))
			continue
		}

		text, e := p.scalar(pn)
		if e != nil {
			return e
		}
		if !strings.HasPrefix(text, "$") {
			t.Parts = append(t.Parts, render.Text(render.NewPhrase(text)))
			continue
		}

		part, e := p.parsePlaceholder(pn, text[1:], rs)
		if e != nil {
			return e
		}
		t.Parts = append(t.Parts, part)
	}

	r.Template = t
	return nil
}

// parsePlaceholder parses "ref" or "ref[flag=value,...]".
func (p *parser) parsePlaceholder(n *yaml.Node, text string, rs *ruleSlots) (render.Part, error) {
	ref, constraints, constrained := strings.Cut(text, "[")
	var flags render.Flags
	if constrained {
		if !strings.HasSuffix(constraints, "]") {
			return render.Part{}, p.wrongTemplateError(n, "missing ]")
		}

		flags = make(render.Flags)
		for _, pair := range strings.Split(strings.TrimSuffix(constraints, "]"), ",") {
			name, value, valid := strings.Cut(strings.TrimSpace(pair), "=")
			if !valid || name == "" {
				return render.Part{}, p.wrongTemplateError(n, "flag constraint must be name=value")
			}
			flags[name] = value
		}
	}

	index, e := strconv.Atoi(ref)
	if e != nil {
		var has bool
		index, has = rs.bindings[ref]
		if !has {
			return render.Part{}, p.wrongTemplateError(n, "unknown slot")
		}
	}
	if index < 0 || index >= len(rs.slots) {
		return render.Part{}, p.wrongTemplateError(n, "slot number out of range")
	}

	return render.Slot(index, flags), nil
}
