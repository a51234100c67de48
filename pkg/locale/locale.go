// Package locale models the closed set of locales a multilingual application
// serves.
//
// Locales follow the `language-COUNTRY` format (e.g. "en-US"). Comparisons are
// case insensitive; the normalized form uses a lowercase language code and an
// uppercase country code.
//
// A synthetic default-detection locale ("mul") sits in front of the actual
// locales so that a request without a locale prefix can be told apart from a
// request for the actual default locale. It never carries content and must be
// removed before any content related work:
//
//	set, err := locale.NewSet([]string{"en-US", "fr-CA"})
//	set.All()           // [mul en-US fr-CA]
//	set.Actual()        // [en-US fr-CA]
//	set.ActualDefault() // en-US
//	set.URLPrefixes()   // [mul en-us fr-ca]
package locale

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultDetection is the synthetic locale used to represent "no locale in
// the URL". The value is BCP 47 compliant ("multiple languages").
const DefaultDetection = "mul"

// ErrInvalidLocale is returned when a locale does not follow the
// `language-COUNTRY` format.
var ErrInvalidLocale = errors.New("invalid locale")

var (
	localePattern           = regexp.MustCompile(`(?i)^[a-z]{2}-[a-z]{2}$`)
	normalizedLocalePattern = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)
)

// IsLocale reports whether s follows the `language-COUNTRY` format, ignoring case.
func IsLocale(s string) bool {
	return localePattern.MatchString(s)
}

// IsNormalized reports whether s is a locale in its normalized case
// (lowercase language, uppercase country).
func IsNormalized(s string) bool {
	return normalizedLocalePattern.MatchString(s)
}

// Normalize returns the normalized form of a locale. Values that are not
// locales are returned unchanged.
func Normalize(s string) string {
	if !IsLocale(s) {
		return s
	}
	language, country, _ := strings.Cut(s, "-")
	return strings.ToLower(language) + "-" + strings.ToUpper(country)
}

// Equal reports whether two locale identifiers are the same, ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Language returns the lowercase language code of a locale.
func Language(s string) string {
	language, _, _ := strings.Cut(s, "-")
	return strings.ToLower(language)
}

// Set is an immutable, validated collection of actual locales plus the
// default-detection locale. The first actual locale is the actual default.
type Set struct {
	actual []string
	index  map[string]string
}

// NewSet validates and normalizes locales. Duplicates (ignoring case) are
// dropped, keeping the first occurrence. At least one locale is required.
func NewSet(locales []string) (*Set, error) {
	if len(locales) == 0 {
		return nil, fmt.Errorf("%w: at least one locale is required", ErrInvalidLocale)
	}

	s := &Set{index: make(map[string]string, len(locales))}
	for _, l := range locales {
		if !IsLocale(l) {
			return nil, fmt.Errorf("%w %q: only `language-country` identifiers are supported", ErrInvalidLocale, l)
		}
		normalized := Normalize(l)
		key := strings.ToLower(normalized)
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = normalized
		s.actual = append(s.actual, normalized)
	}
	return s, nil
}

// MustSet is like NewSet but panics on error. Intended for tests and
// package-level fixtures.
func MustSet(locales ...string) *Set {
	s, err := NewSet(locales)
	if err != nil {
		panic(err)
	}
	return s
}

// Actual returns the actual locales in configuration order.
func (s *Set) Actual() []string {
	return append([]string(nil), s.actual...)
}

// ActualDefault returns the first actual locale.
func (s *Set) ActualDefault() string {
	return s.actual[0]
}

// Default returns the default-detection locale.
func (s *Set) Default() string {
	return DefaultDetection
}

// All returns the default-detection locale followed by the actual locales.
func (s *Set) All() []string {
	return append([]string{DefaultDetection}, s.actual...)
}

// URLPrefixes returns All in lowercase, as used for URL locale prefixes.
func (s *Set) URLPrefixes() []string {
	all := s.All()
	for i, l := range all {
		all[i] = strings.ToLower(l)
	}
	return all
}

// DefaultURLPrefix returns the lowercase default-detection locale.
func (s *Set) DefaultURLPrefix() string {
	return strings.ToLower(DefaultDetection)
}

// Lookup returns the normalized actual locale matching l, ignoring case.
func (s *Set) Lookup(l string) (string, bool) {
	normalized, ok := s.index[strings.ToLower(l)]
	return normalized, ok
}

// IsActual reports whether l is one of the actual locales.
func (s *Set) IsActual(l string) bool {
	_, ok := s.Lookup(l)
	return ok
}

// IsDefault reports whether l is the default-detection locale.
func (s *Set) IsDefault(l string) bool {
	return strings.EqualFold(l, DefaultDetection)
}

// Len returns the number of actual locales.
func (s *Set) Len() int {
	return len(s.actual)
}

// ActualLocales removes the default-detection locale from a framework locale
// list.
func ActualLocales(locales []string, defaultLocale string) []string {
	actual := make([]string, 0, len(locales))
	for _, l := range locales {
		if !strings.EqualFold(l, defaultLocale) {
			actual = append(actual, l)
		}
	}
	return actual
}

// ActualDefaultLocale returns the first actual locale of a framework locale
// list, or "" when there is none.
func ActualDefaultLocale(locales []string, defaultLocale string) string {
	actual := ActualLocales(locales, defaultLocale)
	if len(actual) == 0 {
		return ""
	}
	return actual[0]
}

// ActualLocale replaces the default-detection locale by the actual default
// locale.
func ActualLocale(l, defaultLocale string, locales []string) string {
	if strings.EqualFold(l, defaultLocale) {
		return ActualDefaultLocale(locales, defaultLocale)
	}
	return l
}
