// Package slug turns translator-controlled labels into URL path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins the words of a slug.
const Separator = "-"

// Slugify converts a label into a localized URL segment.
//
// The label is lowercased with the casing rules of locale (e.g. Turkish
// dotless i), then every run of characters that are not letters, numbers or
// combining marks collapses into a single Separator. Leading and trailing
// separators are dropped. Combining marks are kept so that decomposed (NFD)
// labels survive intact.
//
//	Slugify("À propos de nous", "fr-CA") // "à-propos-de-nous"
//	Slugify("  Contact us!  ", "en-US")  // "contact-us"
//
// Slugify is idempotent: Slugify(Slugify(x, l), l) == Slugify(x, l).
func Slugify(label, locale string) string {
	// A Caser is stateful, so one is created per call.
	lower := cases.Lower(tag(locale)).String(label)

	var b strings.Builder
	b.Grow(len(lower))
	pending := false
	for _, r := range lower {
		if !isWordRune(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteString(Separator)
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}

// IsSlug reports whether s is already in slug form for locale.
func IsSlug(s, locale string) bool {
	return s != "" && Slugify(s, locale) == s
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

func tag(locale string) language.Tag {
	t, err := language.Parse(locale)
	if err != nil {
		return language.Und
	}
	return t
}
