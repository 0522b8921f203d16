package generator

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ava12/sentgen/grammar"
	. "github.com/ava12/sentgen/internal/test"
)

func TestNextStepExpansion(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{})

	candidates, e := gen.NextStepExpansion([]Item{Placeholder("NP")})
	ExpectNoError(t, e)
	expected := [][]Item{{Literal("a cat")}, {Literal("a dog")}}
	if diff := cmp.Diff(expected, candidates); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	candidates, e = gen.NextStepExpansion([]Item{Literal("search for"), Placeholder("NP"), Literal("please")})
	ExpectNoError(t, e)
	expected = [][]Item{
		{Literal("search for"), Literal("a cat"), Literal("please")},
		{Literal("search for"), Literal("a dog"), Literal("please")},
	}
	if diff := cmp.Diff(expected, candidates); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	candidates, e = gen.NextStepExpansion([]Item{Placeholder("S")})
	ExpectNoError(t, e)
	expected = [][]Item{{Literal("search for"), Placeholder("NP")}}
	if diff := cmp.Diff(expected, candidates); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestNextStepExpansionErrors(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{})

	candidates, e := gen.NextStepExpansion([]Item{Literal("find"), Placeholder("VP")})
	ExpectNoError(t, e)
	Assert(t, candidates != nil && len(candidates) == 0, "expecting empty set, got %v", candidates)

	_, e = gen.NextStepExpansion([]Item{Literal("search for")})
	ExpectErrorCode(t, MalformedPartialError, e)
	_, e = gen.NextStepExpansion([]Item{Placeholder("NP"), Placeholder("NP")})
	ExpectErrorCode(t, MalformedPartialError, e)
}

func TestNextStepChoices(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root: "S",
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{
				grammar.Alternatives("find", "show me"),
				grammar.Alternatives("", "all"),
				grammar.NT("NP"),
			}},
			terminal("NP", "cats", "CAT", 0),
		},
	})
	ExpectNoError(t, e)
	gen := newGenerator(t, g, Options{})

	candidates, e := gen.NextStepExpansion([]Item{Placeholder("S")})
	ExpectNoError(t, e)
	expected := [][]Item{
		{Literal("find"), Placeholder("NP")},
		{Literal("find"), Literal("all"), Placeholder("NP")},
		{Literal("show me"), Placeholder("NP")},
		{Literal("show me"), Literal("all"), Placeholder("NP")},
	}
	if diff := cmp.Diff(expected, candidates); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestItemJSON(t *testing.T) {
	var items []Item
	ExpectNoError(t, json.Unmarshal([]byte(`["search for", "a", {"nt": "with_filtered_table"}]`), &items))
	expected := []Item{Literal("search for"), Literal("a"), Placeholder("with_filtered_table")}
	if diff := cmp.Diff(expected, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	data, e := json.Marshal(items)
	ExpectNoError(t, e)
	ExpectString(t, `["search for","a",{"nt":"with_filtered_table"}]`, string(data))

	Assert(t, json.Unmarshal([]byte(`[{"token": "x"}]`), &items) != nil, "expecting error for unknown item")
	Assert(t, json.Unmarshal([]byte(`[1]`), &items) != nil, "expecting error for number item")
}
