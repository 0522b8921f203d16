package generator

import (
	"encoding/json"
	"fmt"

	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/render"
)

// Item is an element of a partial derivation: either a literal or a placeholder for a non-terminal.
// JSON form of a literal is a string, JSON form of a placeholder is {"nt": "symbol"}.
type Item struct {
	Text        string
	NonTerminal string
}

// Literal creates a literal item.
func Literal(text string) Item {
	return Item{Text: text}
}

// Placeholder creates a non-terminal item.
func Placeholder(symbol string) Item {
	return Item{NonTerminal: symbol}
}

func (it Item) IsPlaceholder() bool {
	return it.NonTerminal != ""
}

func (it Item) String() string {
	if it.IsPlaceholder() {
		return "NT[" + it.NonTerminal + "]"
	}
	return it.Text
}

type placeholderJSON struct {
	NT string `json:"nt"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	if it.IsPlaceholder() {
		return json.Marshal(placeholderJSON{it.NonTerminal})
	}
	return json.Marshal(it.Text)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var text string
	if json.Unmarshal(data, &text) == nil {
		*it = Item{Text: text}
		return nil
	}

	var p placeholderJSON
	e := json.Unmarshal(data, &p)
	if e != nil {
		return e
	}
	if p.NT == "" {
		return fmt.Errorf("partial derivation item must be a string or {\"nt\": symbol}, got %s", data)
	}

	*it = Item{NonTerminal: p.NT}
	return nil
}

// NextStepExpansion expands the only placeholder of a partial derivation by one rule.
//
// Returns one candidate for every rule of the placeholder symbol and every combination
// of choice alternatives of the rule. Terminals become literals, non-terminals become placeholders.
// Semantic actions are not run and constant key constraints are ignored.
// Returns an empty set if the symbol is unknown, and an error if the partial derivation
// does not contain exactly one placeholder.
func (gen *Generator) NextStepExpansion(partial []Item) ([][]Item, error) {
	at := -1
	placeholders := 0
	for i, it := range partial {
		if it.IsPlaceholder() {
			at = i
			placeholders++
		}
	}
	if placeholders != 1 {
		return nil, malformedPartialError(placeholders)
	}

	result := make([][]Item, 0)
	s, has := gen.grammar.Symbol(partial[at].NonTerminal)
	if !has {
		return result, nil
	}

	prefix := partial[:at]
	suffix := partial[at+1:]
	for _, r := range s.Rules {
		for _, rhs := range expandRule(r) {
			candidate := make([]Item, 0, len(prefix)+len(rhs)+len(suffix))
			candidate = append(candidate, prefix...)
			candidate = append(candidate, rhs...)
			candidate = append(candidate, suffix...)
			result = append(result, candidate)
		}
	}

	return result, nil
}

// expandRule returns right-hand sides of a rule with every combination of choice alternatives.
func expandRule(r *grammar.Rule) [][]Item {
	result := [][]Item{nil}
	for _, s := range r.Expansion {
		var alternatives [][]Item
		switch x := s.(type) {
		case *grammar.Terminal:
			alternatives = [][]Item{phraseItems(x.Phrase)}
		case *grammar.Choice:
			for _, p := range x.Choice.Alternatives {
				alternatives = append(alternatives, phraseItems(p))
			}
		case *grammar.NonTerminal:
			alternatives = [][]Item{{Placeholder(x.Symbol)}}
		}

		if len(alternatives) == 1 {
			for i := range result {
				result[i] = append(result[i], alternatives[0]...)
			}
			continue
		}

		next := make([][]Item, 0, len(result)*len(alternatives))
		for _, prefix := range result {
			for _, alt := range alternatives {
				items := make([]Item, 0, len(prefix)+len(alt))
				items = append(items, prefix...)
				next = append(next, append(items, alt...))
			}
		}
		result = next
	}
	return result
}

func phraseItems(p *render.Phrase) []Item {
	if p.Text == "" {
		return nil
	}
	return []Item{Literal(p.Text)}
}
