package i18n

import (
	"github.com/ava12/sentgen"
)

const (
	InvalidLocaleError = sentgen.LocaleErrors + iota
	UnsupportedLocaleError
)

func invalidLocaleError(locale string, e error) *sentgen.Error {
	return sentgen.FormatError(InvalidLocaleError, "invalid locale %q: %s", locale, e.Error())
}

func unsupportedLocaleError(locale string) *sentgen.Error {
	return sentgen.FormatError(UnsupportedLocaleError, "no language pack for locale %q", locale)
}
