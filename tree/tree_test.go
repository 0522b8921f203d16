package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
	. "github.com/ava12/sentgen/internal/test"
	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
)

func compile(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, e := grammar.Compile(&grammar.Definition{
		Root:     "S",
		External: []string{"ctx", "name"},
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.Literal("search for"), grammar.NT("NP")}},
			{Symbol: "NP", Expansion: []grammar.Slot{grammar.Literal("a cat")}},
			{Symbol: "NP", Expansion: []grammar.Slot{grammar.Literal("the"), grammar.NT("ctx")}},
			{Symbol: "NP", Expansion: []grammar.Slot{grammar.NT("name")}},
		},
	})
	ExpectNoError(t, e)
	return g
}

func apply(t *testing.T, r *grammar.Rule, children ...derivation.Child) *derivation.Derivation {
	t.Helper()
	d, e := derivation.ApplyRule(r, children)
	ExpectNoError(t, e)
	Assert(t, d != nil, "rule %s rejected children", r)
	return d
}

func word(text string) derivation.Terminal {
	return derivation.Terminal{Text: render.NewPhrase(text)}
}

func catTree(t *testing.T) *Node {
	g := compile(t)
	np := apply(t, g.Rule(1), word("a cat"))
	s := apply(t, g.Rule(0), word("search for"), np)
	return FromDerivation(s, "")
}

func TestFromDerivation(t *testing.T) {
	root := catTree(t)
	ExpectString(t,
		`{"nonTerminal":"S","rule":0,"children":[{"terminal":"search for"},{"nonTerminal":"NP","rule":1,"children":[{"terminal":"a cat"}]}]}`,
		root.String())

	index, known := root.Children[1].RuleIndex()
	ExpectBool(t, true, known)
	ExpectInt(t, 1, index)
	_, known = root.Children[0].RuleIndex()
	ExpectBool(t, false, known)
}

func TestSeeds(t *testing.T) {
	g := compile(t)
	contexts := derivation.NewAllocator()
	contexts.New("unused")
	kitchen := contexts.New("kitchen")

	ctxSeed, e := derivation.NewContextSeed(kitchen)
	ExpectNoError(t, e)
	np := apply(t, g.Rule(2), word("the"), ctxSeed)
	root := FromDerivation(apply(t, g.Rule(0), word("search for"), np), "")

	seed := root.Children[1].Children[1]
	ExpectString(t, "ctx", seed.NonTerminal)
	Assert(t, seed.Context != nil, "context id not set")
	ExpectInt(t, 1, *seed.Context)
	ExpectString(t, "", seed.Key)
	Assert(t, seed.Rule == nil, "seed has rule index")

	k := key.Of("name", "bob")
	nameSeed, e := derivation.NewSeed(k, "bob", render.NewPhrase("bob"), nil, 0)
	ExpectNoError(t, e)
	root = FromDerivation(apply(t, g.Rule(3), nameSeed), "")

	seed = root.Children[0]
	ExpectString(t, "name", seed.NonTerminal)
	ExpectString(t, k.String(), seed.Key)
	Assert(t, seed.Context == nil, "unexpected context id")

	orphan := FromDerivation(nameSeed, "")
	ExpectString(t, "?", orphan.NonTerminal)
}

func TestParse(t *testing.T) {
	source := catTree(t).String()
	root, e := Parse([]byte(source))
	ExpectNoError(t, e)
	ExpectString(t, source, root.String())

	data, e := root.MarshalIndent()
	ExpectNoError(t, e)
	Assert(t, strings.Contains(string(data), "\n  \"rule\": 0,"), "unexpected indentation:\n%s", data)
}

func TestParseErrors(t *testing.T) {
	samples := []string{
		`{`,
		`[]`,
		`{"nonTerminal": "S", "terminal": "x"}`,
		`{"terminal": "x", "children": [{"terminal": "y"}]}`,
		`{"terminal": "x", "rule": 1}`,
		`{"terminal": "x", "key": "{}"}`,
		`{"nonTerminal": "S", "children": [null]}`,
		`{"nonTerminal": "S", "children": [{"nonTerminal": "NP", "children": [{"nonTerminal": "N", "terminal": "cat"}]}]}`,
	}

	for _, sample := range samples {
		_, e := Parse([]byte(sample))
		Assert(t, e != nil, "expecting error for %s", sample)
		ExpectErrorCode(t, MalformedTreeError, e)
	}
}

func TestFlatten(t *testing.T) {
	expected := [][]string{
		{"NT[S]"},
		{"search for", "NT[NP]"},
		{"search for", "a cat"},
	}
	if diff := cmp.Diff(expected, Flatten(catTree(t))); diff != "" {
		t.Fatalf("flattened tree mismatch (-want +got):\n%s", diff)
	}

	root, e := Parse([]byte(`{"nonTerminal": "S", "children": [
		{"nonTerminal": "A", "children": [{"terminal": ""}, {"nonTerminal": "B"}]},
		{"nonTerminal": "C", "children": [{"terminal": "c"}]}
	]}`))
	ExpectNoError(t, e)
	expected = [][]string{
		{"NT[S]"},
		{"NT[A]", "NT[C]"},
		{"NT[B]", "NT[C]"},
		{"NT[B]", "c"},
	}
	if diff := cmp.Diff(expected, Flatten(root)); diff != "" {
		t.Fatalf("flattened tree mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk(t *testing.T) {
	root := catTree(t)

	var ltr, rtl []string
	Walk(root, WalkLtr, func(n *Node) (bool, bool) {
		ltr = append(ltr, n.NonTerminal+n.Terminal)
		return true, true
	})
	Walk(root, WalkRtl, func(n *Node) (bool, bool) {
		rtl = append(rtl, n.NonTerminal+n.Terminal)
		return true, true
	})
	ExpectString(t, "S,search for,NP,a cat", strings.Join(ltr, ","))
	ExpectString(t, "S,NP,a cat,search for", strings.Join(rtl, ","))

	var visited []string
	Walk(root, WalkLtr, func(n *Node) (bool, bool) {
		visited = append(visited, n.NonTerminal+n.Terminal)
		return n.NonTerminal == "S", false
	})
	ExpectString(t, "S,search for", strings.Join(visited, ","))
}

func TestSearch(t *testing.T) {
	root := catTree(t)

	found := Search(root, IsA("NP", "VP"), false)
	ExpectInt(t, 1, len(found))
	ExpectString(t, "NP", found[0].NonTerminal)

	found = Search(root, IsALiteral("a cat", "search for"), false)
	ExpectInt(t, 2, len(found))
	ExpectString(t, "search for", found[0].Terminal)

	ExpectInt(t, 2, len(Search(root, IsA("S", "NP"), true)))
	ExpectInt(t, 1, len(Search(root, IsA("S", "NP"), false)))
}

func TestTokens(t *testing.T) {
	ExpectString(t, "search for|a cat", strings.Join(Tokens(catTree(t)), "|"))

	partial, e := Parse([]byte(`{"nonTerminal": "S", "children": [{"terminal": "search for"}, {"nonTerminal": "NP"}]}`))
	ExpectNoError(t, e)
	ExpectString(t, "search for|NT[NP]", strings.Join(Tokens(partial), "|"))
}
