package i18n

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/ava12/sentgen/render"
)

type englishPack struct {
	defaultPack
	tables *Tables
}

// English returns the language pack for American English.
func English() LanguagePack {
	return &englishPack{defaultPack{language.AmericanEnglish}, englishTables()}
}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func rw(expr, repl string) rewrite {
	return rewrite{regexp.MustCompile(expr), repl}
}

func (r rewrite) all(s string) string {
	return r.re.ReplaceAllString(s, r.repl)
}

func (r rewrite) first(s string) string {
	m := r.re.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	result := r.re.ExpandString(nil, r.repl, s, m)
	return s[:m[0]] + string(result) + s[m[1]:]
}

var (
	singularAfterOne = rw(` (1|one|a) ([a-z]+)s `, " $1 $2 ")
	withNo           = rw(` with (no|zero) `, " without ")
	hasNo            = rw(` has no `, " does not have ")
	haveNo           = rw(` have no `, " do not have ")
	doNot            = rw(`\b(does|do) not `, "$1 n't ")
	thirdIsHas       = rw(`\b(he|she|it|what|who|where|when) (is|has) `, "$1 's ")
	iAm              = rw(`\bi am `, "i 'm ")
	youAre           = rw(`\b(you|we|they) are `, "$1 're ")
	hadWould         = rw(`\b(i|you|he|she|we|they) (had|would) `, "$1 'd ")
	articleSomething = rw(`\b(a|the) something\b`, "something")
	articleMy        = rw(`\b(a|the) my\b`, "my")
	suffixLy         = rw(`\b([a-z]+) -ly\b`, "${1}ly")
	newPossessive    = rw(`\bnew (their|my|the|a)\b`, "$1 new")
	doublePossessive = rw(`\b's (my|their|his|her)\b`, "'s")
	inHere           = rw(`\bin here\b`, "here")
	inPlace          = rw(`\bin (home|work)\b`, "at $1")
	onRelativeDate   = rw(`\bon (today|tomorrow|(?:(this|last|next) (?:week|month|year)))\b`, "$1")
	onMonth          = rw(`\bon (jan(?:uary)|feb(?:ruary)?|mar(?:ch)?|apr(?:il)|may|june?|july?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`, "in $1")
	theyWhichIs      = rw(`\b(they(?: 're| are) [a-zA-Z' ]+?) (which|that) is\b`, "$1 $2 are")
	theyWhichHas     = rw(`\b(they(?: 're| are) [a-zA-Z' ]+?) (which|that) has\b`, "$1 $2 have")

	articleBeforeVowel = regexp.MustCompile(`\ba ([aeiou][a-z]*)\b`)
	objectMe           = regexp.MustCompile(`\b([a-zA-Z0-9]+) me\b`)
	firstPerson        = regexp.MustCompile(`\b(my|i|mine)\b`)
	agentFirstPerson   = regexp.MustCompile(`\b(i|me|my|mine)\b`)

	goodWord = regexp.MustCompile(`^([a-zA-Z0-9-][a-zA-Z0-9.&'-_\x{00C0}-\x{00D6}\x{00D8}\x{00F6}\x{00F8}-\x{01BA}\x{01BB}\x{01BC}-\x{01BF}\x{01C0}-\x{01C3}\x{01C4}-\x{0293}\x{0294}\x{0295}\x{02AF}\x{02EE}\x{0300}-\x{036f}]+|,|\?)$`)
	goodInitialedName = regexp.MustCompile(`^(\w+\s\w\s?\.)$`)
	number            = regexp.MustCompile(`^\d{1,3}(,?\d{3})*(\.\d+)?$`)
)

// verbs that keep "me" in commands issued on behalf of someone else
var keepMe = map[string]bool{"let": true, "inform": true, "notify": true, "alert": true, "send": true}

func replaceMeMy(sentence string) string {
	sentence = objectMe.ReplaceAllStringFunc(sentence, func(m string) string {
		verb := m[:len(m)-len(" me")]
		if keepMe[verb] {
			return m
		}
		return verb + " them"
	})

	return firstPerson.ReplaceAllStringFunc(sentence, func(m string) string {
		switch m {
		case "my":
			return "their"
		case "mine":
			return "theirs"
		default:
			return "they"
		}
	})
}

func fixIndefiniteArticle(sentence string) string {
	return articleBeforeVowel.ReplaceAllStringFunc(sentence, func(m string) string {
		if m == "a one" {
			return m
		}
		return "an" + m[1:]
	})
}

func (p *englishPack) PostprocessSynthetic(sentence string, program any, rng render.Rand, target Target) string {
	if pr, is := program.(Principal); is && pr.HasPrincipal() {
		sentence = replaceMeMy(sentence)
	}

	user := (target == ForUser)
	agent := (target == ForAgent)

	if user && strings.HasSuffix(sentence, " ?") && coin(rng) {
		sentence = sentence[:len(sentence)-2]
	}

	sentence = singularAfterOne.all(sentence)

	if agent || coin(rng) {
		sentence = withNo.all(sentence)
	}
	if user && coin(rng) {
		sentence = hasNo.all(sentence)
	}
	if user && coin(rng) {
		sentence = haveNo.all(sentence)
	}

	if agent || coin(rng) {
		sentence = doNot.all(sentence)
	}
	if user && coin(rng) {
		sentence = thirdIsHas.all(sentence)
	}
	if agent || coin(rng) {
		sentence = iAm.all(sentence)
	}
	if agent || coin(rng) {
		sentence = youAre.all(sentence)
	}
	if user && coin(rng) {
		sentence = hadWould.all(sentence)
	}

	sentence = articleSomething.all(sentence)
	sentence = articleMy.all(sentence)
	sentence = suffixLy.all(sentence)
	sentence = fixIndefiniteArticle(sentence)
	sentence = newPossessive.first(sentence)
	sentence = doublePossessive.first(sentence)
	if user && coin(rng) {
		sentence = inHere.first(sentence)
	}
	sentence = inPlace.first(sentence)
	sentence = onRelativeDate.first(sentence)
	sentence = onMonth.first(sentence)
	sentence = theyWhichIs.first(sentence)
	sentence = theyWhichHas.first(sentence)

	// annotation markers left by templates
	sentence = strings.ReplaceAll(sentence, "#", "")

	return strings.TrimSpace(sentence)
}

var specialTokens = map[string]string{
	".":   ".",
	",":   ",",
	"?":   "?",
	"!":   "!",
	":":   ":",
	"n't": "n't",

	"-rrb-": ")",
	"-lrb-": " (",
	"-rcb-": "}",
	"-lcb-": " {",
	"-rsb-": "]",
	"-lsb-": " [",
}

func detokenize(sentence, prev, token string) string {
	switch {
	case token == "":
		return sentence
	case token == "." && prev != "" && strings.ContainsAny(prev[len(prev)-1:], ".!?"):
		return sentence
	case strings.HasPrefix(token, "'"):
		return sentence + token
	}

	if special, has := specialTokens[token]; has {
		return sentence + special
	}

	// "cannot", "gonna", and "gotta" are split by tokenizers
	if (token == "not" && prev == "can") || ((token == "na" || token == "ta") && prev == "gon") {
		return sentence + token
	}

	if sentence != "" {
		sentence += " "
	}
	return sentence + token
}

func (p *englishPack) Detokenize(tokens []string) string {
	sentence := ""
	prev := ""
	for _, token := range tokens {
		sentence = detokenize(sentence, prev, token)
		prev = token
	}
	return sentence
}

func (p *englishPack) IsGoodWord(word string) bool {
	return goodWord.MatchString(word)
}

const punctuation = `,.:;()[]{}"'-!?`

func hasPunctuation(s string) bool {
	return strings.ContainsAny(s, punctuation)
}

func isNumber(word string) bool {
	return number.MatchString(word)
}

func isZipcode(word string) bool {
	if len(word) != 5 {
		return false
	}
	for _, c := range word {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (p *englishPack) IsGoodSentence(sentence string) bool {
	if len(sentence) < 3 {
		return false
	}

	if hasPunctuation(sentence) {
		if before, _, found := strings.Cut(sentence, ","); found {
			sentence = strings.TrimSpace(before)
		}
		if hasPunctuation(sentence) {
			return false
		}
	}

	words := strings.Split(sentence, " ")
	if p.tables.IsStopWord(words[0]) || p.tables.IsStopWord(words[len(words)-1]) {
		return false
	}
	switch words[0] {
	case "has", "have", "having":
		return false
	}

	for _, word := range words {
		if !isNumber(word) || isZipcode(word) {
			return true
		}
	}
	return false
}

func (p *englishPack) IsGoodPersonName(name string) bool {
	return p.IsGoodWord(name) || goodInitialedName.MatchString(name)
}

func (p *englishPack) AddDefiniteArticle(phrase string) string {
	return "the " + phrase
}

func (p *englishPack) ToAgentSideUtterance(phrase string) string {
	return agentFirstPerson.ReplaceAllStringFunc(phrase, func(m string) string {
		switch m {
		case "my":
			return "your"
		case "mine":
			return "yours"
		default:
			return "you"
		}
	})
}

func (p *englishPack) Tables() *Tables {
	return p.tables
}
