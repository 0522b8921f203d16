// Package i18n provides language packs: locale specific postprocessing of generated sentences,
// detokenization, word and sentence filters, and phrase tables used by grammars.
//
// Packs are selected by locale with Get. The package registers a pack for American English;
// other packs may be added with Register.
package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/ava12/sentgen/render"
)

// Target tells who is going to utter a synthetic sentence.
type Target int

const (
	ForUser Target = iota
	ForAgent
)

// Principal is implemented by program values that may be executed on behalf of another person.
// Sentences of such programs refer to that person in the third person.
type Principal interface {
	HasPrincipal() bool
}

type LanguagePack interface {
	Locale() language.Tag

	// PostprocessSynthetic fixes up a generated sentence: contractions, articles, and
	// other template artifacts. Optional rewrites are applied when rng flips a coin.
	PostprocessSynthetic(sentence string, program any, rng render.Rand, target Target) string

	// Detokenize joins tokens into properly spaced text.
	Detokenize(tokens []string) string

	IsGoodWord(word string) bool
	IsGoodSentence(sentence string) bool
	IsGoodNumber(number string) bool
	IsGoodPersonName(name string) bool

	AddDefiniteArticle(phrase string) string

	// ToAgentSideUtterance rewrites first person references to second person.
	ToAgentSideUtterance(phrase string) string

	Tables() *Tables
}

// DeviceTemplate combines a device name ($device) with a command ($command).
// The template applies only to commands accepted by Accepts.
type DeviceTemplate struct {
	Template string
	Accepts  func(command string) bool
}

// Apply substitutes device and command into the template.
// Returns false if the template does not accept the command.
func (t DeviceTemplate) Apply(device, command string) (string, bool) {
	if t.Accepts != nil && !t.Accepts(command) {
		return "", false
	}
	return strings.NewReplacer("$device", device, "$command", command).Replace(t.Template), true
}

// Tables holds language specific phrase tables.
type Tables struct {
	StopWords              []string
	ArgumentNameOverrides  map[string][]string
	IgnorableTokens        map[string][]string
	Abbreviations          map[string][]string
	NoIdea                 []string
	ChangeSubjectTemplates []string
	SingleDeviceTemplates  []DeviceTemplate
}

// IsStopWord reports whether word is listed in StopWords.
func (t *Tables) IsStopWord(word string) bool {
	for _, w := range t.StopWords {
		if w == word {
			return true
		}
	}
	return false
}

// ChangeSubject substitutes phrase into every change subject template.
func (t *Tables) ChangeSubject(phrase string) []string {
	result := make([]string, len(t.ChangeSubjectTemplates))
	for i, tmpl := range t.ChangeSubjectTemplates {
		result[i] = strings.Replace(tmpl, "{}", phrase, 1)
	}
	return result
}

func coin(rng render.Rand) bool {
	return rng.IntN(2) == 0
}

var registry struct {
	sync.RWMutex
	tags    []language.Tag
	packs   []LanguagePack
	matcher language.Matcher
}

// Register adds a language pack replacing any pack registered for the same locale.
func Register(pack LanguagePack) {
	registry.Lock()
	defer registry.Unlock()

	tag := pack.Locale()
	for i, t := range registry.tags {
		if t == tag {
			registry.packs[i] = pack
			registry.matcher = language.NewMatcher(registry.tags)
			return
		}
	}

	registry.tags = append(registry.tags, tag)
	registry.packs = append(registry.packs, pack)
	registry.matcher = language.NewMatcher(registry.tags)
}

// Get returns the language pack best matching the locale, e.g. "en-US" or "en".
func Get(locale string) (LanguagePack, error) {
	tag, e := language.Parse(locale)
	if e != nil {
		return nil, invalidLocaleError(locale, e)
	}

	registry.RLock()
	defer registry.RUnlock()

	if registry.matcher == nil {
		return nil, unsupportedLocaleError(locale)
	}
	_, index, confidence := registry.matcher.Match(tag)
	if confidence == language.No {
		return nil, unsupportedLocaleError(locale)
	}
	return registry.packs[index], nil
}

// Default returns a language pack performing no language specific processing.
func Default(locale language.Tag) LanguagePack {
	return &defaultPack{locale}
}

func init() {
	Register(English())
}
