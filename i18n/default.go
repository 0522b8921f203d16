package i18n

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/ava12/sentgen/render"
)

var numberRe = regexp.MustCompile(`^[0-9]+$`)

type defaultPack struct {
	locale language.Tag
}

func (p *defaultPack) Locale() language.Tag {
	return p.locale
}

func (p *defaultPack) PostprocessSynthetic(sentence string, _ any, _ render.Rand, _ Target) string {
	return strings.TrimSpace(sentence)
}

func (p *defaultPack) Detokenize(tokens []string) string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			words = append(words, t)
		}
	}
	return strings.Join(words, " ")
}

func (p *defaultPack) IsGoodWord(string) bool {
	return true
}

func (p *defaultPack) IsGoodSentence(sentence string) bool {
	return len(sentence) >= 3
}

func (p *defaultPack) IsGoodNumber(number string) bool {
	return numberRe.MatchString(number)
}

func (p *defaultPack) IsGoodPersonName(name string) bool {
	return p.IsGoodWord(name)
}

func (p *defaultPack) AddDefiniteArticle(phrase string) string {
	return phrase
}

func (p *defaultPack) ToAgentSideUtterance(phrase string) string {
	return phrase
}

func (p *defaultPack) Tables() *Tables {
	return &Tables{}
}
