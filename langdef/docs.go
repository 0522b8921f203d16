/*
Package langdef converts YAML grammar description to grammar.Grammar structure.

Description is a mapping with keys:
*/
//  root: symbol       # root symbol name, defaults to "root"
//  external: [names]  # symbols without rules, derivations are seeded by the caller
//  rules:             # mapping of symbol name to a list of rules
//    symbol:
//      - expansion: [slot, ...]
//        name: label              # optional
//        priority: 0.5            # optional, defaults to 0
//        value: template          # optional, value template
//        action: name             # optional, registered semantic action
//        key: {field: template}   # optional, key template
//        keyFunction: name        # optional, registered key function
//        constraints: [constraint, ...]
//        template: [part, ...]    # optional render template
//        flags: {flag: value}     # optional flags of rendered sentences
/*
Expansion slots are:
  - "text": a literal;
  - {text: "text", flags: {flag: value}}: a literal with flags, also used for literals starting with $;
  - "$symbol": a non-terminal;
  - "$name:symbol": a non-terminal bound to name;
  - [alternative, ...]: a choice, every alternative is a literal in either form.

Slots are numbered from 0. A reference to a slot is either its number or its binding name.

Value template is any YAML value. A string "$N" or "$name" is replaced with the value of the referenced
non-terminal slot, mappings and sequences are built recursively, other values are taken as is.
If neither value nor action is set, the rule returns the value of its only non-terminal,
a list of values of its non-terminals, or the text of its terminals.

Key template maps field names to field values: "$" is the derivation value itself,
"$.a.b" is the member b of member a of the derivation value (mapping members only),
other values are taken as is. If neither key nor keyFunction is set, the key is the whole value.

Constraint is either {slot: ref, field: name, equals: value} or
{slot: ref, field: name, other: ref, otherField: name}; otherField defaults to field.
A non-terminal slot may have at most one constraint.

Render template parts are literals and references "$N" or "$name", optionally followed by
flag constraints: "$1[plural=other,gender=f]". Default template references all slots in order.
*/
package langdef
