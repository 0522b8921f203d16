package generator

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ava12/sentgen/derivation"
	"github.com/ava12/sentgen/grammar"
	. "github.com/ava12/sentgen/internal/test"
	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
	"github.com/ava12/sentgen/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func constant(v any) grammar.SemanticAction {
	return func(...any) (any, bool) {
		return v, true
	}
}

func terminal(symbol, text string, value any, priority float64) *grammar.Rule {
	return &grammar.Rule{
		Symbol:    symbol,
		Expansion: []grammar.Slot{grammar.Literal(text)},
		Action:    constant(value),
		Priority:  priority,
	}
}

func searchGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, e := grammar.Compile(&grammar.Definition{
		Root: "S",
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.Literal("search for"), grammar.NT("NP")}, Priority: 1},
			terminal("NP", "a cat", "CAT", 0.5),
			terminal("NP", "a dog", "DOG", 0.25),
		},
	})
	ExpectNoError(t, e)
	return g
}

func newGenerator(t *testing.T, g *grammar.Grammar, options Options) *Generator {
	t.Helper()
	if options.Logger == nil {
		options.Logger = zaptest.NewLogger(t)
	}
	gen, e := New(g, options)
	ExpectNoError(t, e)
	return gen
}

func sentences(ds []*derivation.Derivation) []string {
	result := make([]string, len(ds))
	for i, d := range ds {
		result[i] = d.BestSentence()
	}
	return result
}

func TestSearchFor(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{MaxDepth: 1, LogLevel: LogEverything})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)

	ExpectInt(t, 2, len(roots))
	ExpectString(t, "search for a cat", roots[0].BestSentence())
	ExpectString(t, "search for a dog", roots[1].BestSentence())
	Expect(t, roots[0].Value == "CAT", "CAT", roots[0].Value)
	Expect(t, roots[1].Value == "DOG", "DOG", roots[1].Value)
	ExpectFloat(t, 1.5, roots[0].Priority)
	ExpectFloat(t, 1.25, roots[1].Priority)

	ExpectInt(t, 2, len(gen.Table("NP", 0)))
	ExpectInt(t, 0, len(gen.Table("S", 0)))
	Assert(t, gen.Table("NP", 2) == nil, "depth 2 is not expanded")
	Assert(t, gen.Table("VP", 0) == nil, "unknown symbol")

	stats := gen.Stats()
	ExpectInt(t, 2, stats.Depth)
	ExpectInt(t, 4, stats.Derivations)
	Expect(t, stats.Rejected == 0, 0, stats.Rejected)
}

func agreementGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, e := grammar.Compile(&grammar.Definition{
		Root:     "S",
		External: []string{"subject", "verb"},
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{
				grammar.NT("subject"),
				grammar.NT("verb").Agrees("number", 0, "number"),
			}},
		},
	})
	ExpectNoError(t, e)
	return g
}

func wordSeed(t *testing.T, text, number string) *derivation.Derivation {
	t.Helper()
	d, e := derivation.NewSeed(key.Of("number", number, "word", text), text, render.NewPhrase(text), nil, 0)
	ExpectNoError(t, e)
	return d
}

func TestAgreement(t *testing.T) {
	g := agreementGrammar(t)
	samples := []struct {
		verb     *derivation.Derivation
		expected []string
	}{
		{wordSeed(t, "run", "other"), []string{}},
		{wordSeed(t, "runs", "one"), []string{"the cat runs"}},
	}

	for i, s := range samples {
		gen := newGenerator(t, g, Options{MaxDepth: 1, Seeds: map[string][]*derivation.Derivation{
			"subject": {wordSeed(t, "the cat", "one")},
			"verb":    {s.verb},
		}})
		roots, e := gen.Generate(context.Background())
		ExpectNoError(t, e)
		if diff := cmp.Diff(s.expected, sentences(roots)); diff != "" {
			t.Errorf("sample #%d: root sentences mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestDeduplication(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root: "NP",
		Rules: []*grammar.Rule{
			terminal("NP", "a cat", "CAT", 0.1),
			terminal("NP", "the cat", "CAT", 0.7),
			terminal("NP", "some cat", "CAT", 0.7),
			terminal("NP", "a dog", "DOG", 0.2),
		},
	})
	ExpectNoError(t, e)

	gen := newGenerator(t, g, Options{MaxDepth: 1})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)
	if diff := cmp.Diff([]string{"the cat", "a dog"}, sentences(roots)); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}

	seen := make(map[string]bool)
	for _, d := range gen.Table("NP", 0) {
		id := fmt.Sprintf("%s %p", d.Key, d.Context)
		Assert(t, !seen[id], "duplicate derivation %s", id)
		seen[id] = true
	}
}

func manyNouns(n int) []*grammar.Rule {
	rules := make([]*grammar.Rule, n)
	for i := range rules {
		rules[i] = terminal("NP", fmt.Sprintf("noun%d", i), i, float64(i)/10)
	}
	return rules
}

func TestPruning(t *testing.T) {
	rules := append(manyNouns(10), &grammar.Rule{
		Symbol:    "S",
		Expansion: []grammar.Slot{grammar.NT("NP"), grammar.Literal("and"), grammar.NT("NP")},
	})
	g, e := grammar.Compile(&grammar.Definition{Root: "S", Rules: rules})
	ExpectNoError(t, e)

	gen := newGenerator(t, g, Options{MaxDepth: 1, TargetPruningSize: 4})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)

	nouns := gen.Table("NP", 0)
	ExpectInt(t, 4, len(nouns))
	for i := 1; i < len(nouns); i++ {
		Assert(t, nouns[i-1].Priority >= nouns[i].Priority, "table is not ordered by priority")
	}

	Assert(t, len(roots) > 0 && len(roots) <= 4, "expecting 1..4 roots, got %d", len(roots))
	stats := gen.Stats()
	Expect(t, stats.Pruned == 6, 6, stats.Pruned)
	Expect(t, stats.Tuples == 4+10, 14, stats.Tuples)
}

func TestPruningFavoursPriority(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root: "S",
		Rules: []*grammar.Rule{
			terminal("S", "low", "LOW", 0),
			terminal("S", "high", "HIGH", 3),
		},
	})
	ExpectNoError(t, e)

	const runs = 200
	kept := 0
	for i := 0; i < runs; i++ {
		gen := newGenerator(t, g, Options{MaxDepth: 0, TargetPruningSize: 1, Seed: fmt.Sprintf("seed%d", i)})
		roots, e := gen.Generate(context.Background())
		ExpectNoError(t, e)
		ExpectInt(t, 1, len(roots))
		if roots[0].Value == "HIGH" {
			kept++
		}
	}

	// exp(3) / (1 + exp(3)) is about 0.95
	Assert(t, kept > runs*4/5, "high priority derivation kept in %d of %d runs", kept, runs)
}

func TestMaxDepth(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{})
	ExpectInt(t, 0, gen.Options().MaxDepth)
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)
	ExpectInt(t, 0, len(roots))
	ExpectInt(t, 1, gen.Stats().Depth)
	ExpectInt(t, 2, len(gen.Table("NP", 0)))

	gen = newGenerator(t, searchGrammar(t), Options{MaxDepth: -1})
	ExpectInt(t, DefaultMaxDepth, gen.Options().MaxDepth)
}

func TestDeterminism(t *testing.T) {
	rules := append(manyNouns(20), &grammar.Rule{
		Symbol:    "S",
		Expansion: []grammar.Slot{grammar.NT("NP"), grammar.Alternatives("and", "or"), grammar.NT("NP")},
	})
	g, e := grammar.Compile(&grammar.Definition{Root: "S", Rules: rules})
	ExpectNoError(t, e)

	run := func(parallelism int, seed string) []string {
		gen := newGenerator(t, g, Options{MaxDepth: 2, TargetPruningSize: 7, Parallelism: parallelism, Seed: seed})
		roots, e := gen.Generate(context.Background())
		ExpectNoError(t, e)
		return sentences(roots)
	}

	first := run(1, "seed")
	if diff := cmp.Diff(first, run(8, "seed")); diff != "" {
		t.Fatalf("generation depends on parallelism (-first +second):\n%s", diff)
	}
	Assert(t, len(first) > 0, "no roots generated")
}

func TestContexts(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root:     "S",
		External: []string{"ctx"},
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.Literal("compare"), grammar.NT("ctx"), grammar.NT("ctx")}},
		},
	})
	ExpectNoError(t, e)

	a := derivation.NewAllocator()
	c1 := a.New("first")
	c2 := a.New("second")
	gen := newGenerator(t, g, Options{MaxDepth: 1, Contexts: []*derivation.Context{c1, c2}, ContextSymbol: "ctx"})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)

	ExpectInt(t, 2, len(roots))
	for _, d := range roots {
		values := d.Value.([]any)
		Assert(t, values[0] == values[1], "incompatible contexts combined: %v", values)
		Assert(t, d.Context == c1 || d.Context == c2, "context lost")
	}
	Expect(t, gen.Stats().Rejected == 2, 2, gen.Stats().Rejected)

	_, e = New(g, Options{Contexts: []*derivation.Context{c1}, ContextSymbol: "S"})
	ExpectErrorCode(t, SeedError, e)
	_, e = New(g, Options{Seeds: map[string][]*derivation.Derivation{"none": nil}})
	ExpectErrorCode(t, SeedError, e)
}

func TestInvariantViolation(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root: "S",
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.NT("NP")}, Action: func(...any) (any, bool) { return nil, true }},
			terminal("NP", "a cat", "CAT", 0),
		},
	})
	ExpectNoError(t, e)

	gen := newGenerator(t, g, Options{MaxDepth: 2})
	_, e = gen.Generate(context.Background())
	ExpectErrorCode(t, derivation.InvalidValueError, e)
}

func TestRejectedCombinations(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root: "S",
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.NT("NP")}, Action: func(args ...any) (any, bool) {
				return args[0], args[0] != "DOG"
			}},
			terminal("NP", "a cat", "CAT", 0),
			terminal("NP", "a dog", "DOG", 0),
		},
	})
	ExpectNoError(t, e)

	gen := newGenerator(t, g, Options{MaxDepth: 1})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)
	ExpectInt(t, 1, len(roots))
	Expect(t, gen.Stats().Rejected == 1, 1, gen.Stats().Rejected)
}

func TestExpandDepth(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{MaxDepth: 3})
	ctx, cancel := context.WithCancel(context.Background())

	ExpectNoError(t, gen.ExpandDepth(ctx, 0))
	ExpectInt(t, 1, gen.Stats().Depth)
	ExpectErrorCode(t, DepthError, gen.ExpandDepth(ctx, 4))
	ExpectErrorCode(t, DepthError, gen.ExpandDepth(ctx, -1))

	cancel()
	e := gen.ExpandDepth(ctx, 2)
	Assert(t, e == context.Canceled, "expecting cancellation, got %v", e)
	ExpectInt(t, 1, gen.Stats().Depth)
	ExpectNoError(t, gen.ExpandDepth(ctx, 0))
}

func TestProgramFromTree(t *testing.T) {
	gen := newGenerator(t, searchGrammar(t), Options{MaxDepth: 1})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)

	root := tree.FromDerivation(roots[1], "")
	program, e := gen.ProgramFromTree(root)
	ExpectNoError(t, e)
	ExpectString(t, `"DOG"`, program)

	tree.Walk(root, tree.WalkLtr, func(n *tree.Node) (bool, bool) {
		n.Rule = nil
		return true, true
	})
	d, e := gen.DerivationFromTree(root)
	ExpectNoError(t, e)
	ExpectString(t, "search for a dog", d.BestSentence())

	root.Children[1].Children[0].Terminal = "a bird"
	_, e = gen.ProgramFromTree(root)
	ExpectErrorCode(t, RuleMismatchError, e)

	_, e = gen.ProgramFromTree(&tree.Node{NonTerminal: "VP"})
	ExpectErrorCode(t, UnknownSymbolError, e)

	index := 1
	_, e = gen.ProgramFromTree(&tree.Node{NonTerminal: "S", Rule: &index})
	ExpectErrorCode(t, UnknownRuleError, e)
}

func TestProgramFromTreeConstraints(t *testing.T) {
	subject := wordSeed(t, "the cat", "one")
	run := wordSeed(t, "run", "other")
	runs := wordSeed(t, "runs", "one")
	gen := newGenerator(t, agreementGrammar(t), Options{MaxDepth: 1, Seeds: map[string][]*derivation.Derivation{
		"subject": {subject},
		"verb":    {run, runs},
	}})

	sentence := func(verb *derivation.Derivation) *tree.Node {
		index := 0
		return &tree.Node{NonTerminal: "S", Rule: &index, Children: []*tree.Node{
			{NonTerminal: "subject", Key: subject.Key.String()},
			{NonTerminal: "verb", Key: verb.Key.String()},
		}}
	}

	program, e := gen.ProgramFromTree(sentence(runs))
	ExpectNoError(t, e)
	ExpectString(t, `["the cat","runs"]`, program)

	_, e = gen.ProgramFromTree(sentence(run))
	ExpectErrorCode(t, RejectedTreeError, e)
}

func TestProgramFromContextTree(t *testing.T) {
	g, e := grammar.Compile(&grammar.Definition{
		Root:     "S",
		External: []string{"ctx"},
		Rules: []*grammar.Rule{
			{Symbol: "S", Expansion: []grammar.Slot{grammar.Literal("then"), grammar.NT("ctx")}},
		},
	})
	ExpectNoError(t, e)

	c := derivation.NewAllocator().New(map[string]any{"program": "now"})
	gen := newGenerator(t, g, Options{MaxDepth: 1, Contexts: []*derivation.Context{c}, ContextSymbol: "ctx"})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)
	ExpectInt(t, 1, len(roots))

	root := tree.FromDerivation(roots[0], "")
	program, e := gen.ProgramFromTree(root)
	ExpectNoError(t, e)
	ExpectString(t, `{"program":"now"}`, program)

	missing := 5
	root.Children[1].Context = &missing
	_, e = gen.ProgramFromTree(root)
	ExpectErrorCode(t, UnknownContextError, e)
}

func TestSerializer(t *testing.T) {
	failing := SerializerFunc(func(any) (string, error) {
		return "", fmt.Errorf("no serializer")
	})
	gen := newGenerator(t, searchGrammar(t), Options{MaxDepth: 1, Serializer: failing})
	roots, e := gen.Generate(context.Background())
	ExpectNoError(t, e)

	_, e = gen.Serialize(roots[0])
	ExpectErrorCode(t, SerializationError, e)
}
