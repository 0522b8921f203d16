package i18n

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	. "github.com/ava12/sentgen/internal/test"
)

// fixedRand always returns the same number, so that every coin lands on the same side.
type fixedRand int

func (r fixedRand) IntN(n int) int {
	return int(r) % n
}

const (
	heads = fixedRand(0)
	tails = fixedRand(1)
)

type onBehalf bool

func (ob onBehalf) HasPrincipal() bool {
	return bool(ob)
}

func TestPostprocessSynthetic(t *testing.T) {
	en := English()
	samples := []struct {
		sentence string
		program  any
		rng      fixedRand
		target   Target
		expected string
	}{
		{"i am looking for one stars restaurant with no reviews ?", nil, heads, ForUser,
			"i 'm looking for one star restaurant without reviews"},
		{"i am looking for one stars restaurant with no reviews ?", nil, tails, ForUser,
			"i am looking for one star restaurant with no reviews ?"},
		{"i am looking for a restaurant with no reviews ?", nil, tails, ForAgent,
			"i 'm looking for a restaurant without reviews ?"},
		{"show me a italian restaurant in home", nil, tails, ForUser,
			"show me an italian restaurant at home"},
		{"find a something quick -ly on today", nil, tails, ForUser,
			"find something quickly today"},
		{"book a table on march #", nil, tails, ForUser,
			"book a table in march"},
		{"show me my reviews", onBehalf(true), tails, ForUser,
			"show them their reviews"},
		{"send me my reviews", onBehalf(true), tails, ForUser,
			"send me their reviews"},
		{"show me my reviews", onBehalf(false), tails, ForUser,
			"show me my reviews"},
	}

	for i, s := range samples {
		result := en.PostprocessSynthetic(s.sentence, s.program, s.rng, s.target)
		Assert(t, result == s.expected, "sample #%d: expecting %q, got %q", i, s.expected, result)
	}
}

func TestDetokenize(t *testing.T) {
	en := English()
	ExpectString(t, "i can't go.", en.Detokenize([]string{"i", "ca", "n't", "go", "."}))
	ExpectString(t, "cannot do it!", en.Detokenize([]string{"can", "not", "do", "it", "!", "."}))
	ExpectString(t, "it's gonna rain", en.Detokenize([]string{"it", "'s", "gon", "na", "", "rain"}))

	ExpectString(t, "a b", Default(language.Und).Detokenize([]string{"a", "", "b"}))
}

func TestFilters(t *testing.T) {
	en := English()

	words := map[string]bool{"pizza": true, "o'brien": true, ",": true, "a": false, "hello world": false}
	for w, good := range words {
		Assert(t, en.IsGoodWord(w) == good, "IsGoodWord(%q) != %t", w, good)
	}

	sentences := map[string]bool{
		"ab":                   false,
		"the pizza place":      false,
		"pizza places near me": false,
		"has pizza":            false,
		"12,345 100":           false,
		"94305 12":             true,
		"pizza, please":        true,
		"pizza. now":           false,
		"cheap pizza places":   true,
	}
	for s, good := range sentences {
		Assert(t, en.IsGoodSentence(s) == good, "IsGoodSentence(%q) != %t", s, good)
	}

	ExpectBool(t, true, en.IsGoodNumber("42"))
	ExpectBool(t, false, en.IsGoodNumber("4.2"))
	ExpectBool(t, true, en.IsGoodPersonName("john"))
	ExpectBool(t, true, en.IsGoodPersonName("john f."))
	ExpectBool(t, false, en.IsGoodPersonName("john (f)"))
}

func TestPhrases(t *testing.T) {
	en := English()
	ExpectString(t, "the pizza", en.AddDefiniteArticle("pizza"))
	ExpectString(t, "you want your pizza", en.ToAgentSideUtterance("i want my pizza"))
	ExpectString(t, "give you yours", en.ToAgentSideUtterance("give me mine"))

	def := Default(language.Japanese)
	ExpectString(t, "pizza", def.AddDefiniteArticle("pizza"))
	ExpectString(t, "find pizza", def.PostprocessSynthetic(" find pizza ", nil, heads, ForUser))
}

func TestTables(t *testing.T) {
	tables := English().Tables()

	ExpectBool(t, true, tables.IsStopWord("the"))
	ExpectBool(t, false, tables.IsStopWord("pizza"))
	if diff := cmp.Diff([]string{"inc.", "inc", "incorporated"}, tables.Abbreviations["inc"]); diff != "" {
		t.Fatalf("abbreviations mismatch (-want +got):\n%s", diff)
	}
	ExpectString(t, "ok , how about italian food", tables.ChangeSubject("italian food")[0])

	tmpl := tables.SingleDeviceTemplates[0]
	_, ok := tmpl.Apply("yelp", "what is open")
	ExpectBool(t, false, ok)
	s, ok := tmpl.Apply("yelp", "find pizza")
	ExpectBool(t, true, ok)
	ExpectString(t, "ask yelp to find pizza", s)

	s, ok = tables.SingleDeviceTemplates[9].Apply("yelp", "what is open")
	ExpectBool(t, true, ok)
	ExpectString(t, "what is open from yelp", s)

	ExpectInt(t, 0, len(Default(language.Und).Tables().NoIdea))
}

func TestRegistry(t *testing.T) {
	pack, e := Get("en-US")
	ExpectNoError(t, e)
	Assert(t, pack.Locale() == language.AmericanEnglish, "unexpected locale %s", pack.Locale())

	pack, e = Get("en")
	ExpectNoError(t, e)
	ExpectString(t, "the pizza", pack.AddDefiniteArticle("pizza"))

	_, e = Get("not a locale!")
	ExpectErrorCode(t, InvalidLocaleError, e)
	_, e = Get("ja-JP")
	ExpectErrorCode(t, UnsupportedLocaleError, e)

	Register(Default(language.Japanese))
	pack, e = Get("ja-JP")
	ExpectNoError(t, e)
	Assert(t, pack.Locale() == language.Japanese, "unexpected locale %s", pack.Locale())
}
