// Package rules compiles a route tree into the rewrite and redirect rules an
// HTTP layer applies, and matches request paths against them.
//
// Rewrites map each localized URL to its canonical internal route:
//
//	/fr-ca/%C3%A0-propos-de-nous → /fr-ca/about-us
//
// Redirects send alternate Unicode encodings of a localized URL (NFD, NFKC,
// NFKD and the raw UTF-8 form) to its one preferred, NFC percent-encoded form.
package rules

// Rewrite maps a localized source path to its canonical destination.
type Rewrite struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`

	// Locale is always false: sources already carry their locale prefix.
	Locale bool `json:"locale" yaml:"locale"`
}

// Redirect permanently sends an alternate encoding of a localized path to
// its canonical form.
type Redirect struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Locale      bool   `json:"locale" yaml:"locale"`
	Permanent   bool   `json:"permanent" yaml:"permanent"`
}

// Set is a compiled, immutable rule set.
type Set struct {
	rewrites       []Rewrite
	redirects      []Redirect
	localePrefixes []string
	defaultPrefix  string

	rewriteMatcher  *Matcher
	redirectMatcher *Matcher
}

// NewSet builds a rule set. localePrefixes are the lowercase URL locale
// prefixes, default-detection prefix first.
func NewSet(rewrites []Rewrite, redirects []Redirect, localePrefixes []string, defaultPrefix string) *Set {
	s := &Set{
		rewrites:        append([]Rewrite(nil), rewrites...),
		redirects:       append([]Redirect(nil), redirects...),
		localePrefixes:  append([]string(nil), localePrefixes...),
		defaultPrefix:   defaultPrefix,
		rewriteMatcher:  NewMatcher(),
		redirectMatcher: NewMatcher(),
	}
	for _, r := range s.rewrites {
		s.rewriteMatcher.Add(r.Source, r.Destination)
	}
	for _, r := range s.redirects {
		s.redirectMatcher.Add(r.Source, r.Destination)
	}
	return s
}

// Rewrites returns the rewrite rules in compilation order.
func (s *Set) Rewrites() []Rewrite {
	return append([]Rewrite(nil), s.rewrites...)
}

// Redirects returns the redirect rules in compilation order.
func (s *Set) Redirects() []Redirect {
	return append([]Redirect(nil), s.redirects...)
}

// LocalePrefixes returns the URL locale prefixes.
func (s *Set) LocalePrefixes() []string {
	return append([]string(nil), s.localePrefixes...)
}

// DefaultLocalePrefix returns the default-detection URL prefix.
func (s *Set) DefaultLocalePrefix() string {
	return s.defaultPrefix
}

// IsLocalePrefix reports whether seg is one of the URL locale prefixes,
// ignoring case.
func (s *Set) IsLocalePrefix(seg string) bool {
	for _, p := range s.localePrefixes {
		if len(p) == len(seg) && fold(p) == fold(seg) {
			return true
		}
	}
	return false
}

// MatchRewrite returns the rewrite applying to a percent-encoded request
// path.
func (s *Set) MatchRewrite(p string) (Match, bool) {
	return s.rewriteMatcher.Match(p)
}

// MatchRedirect returns the redirect applying to a request path.
func (s *Set) MatchRedirect(p string) (Match, bool) {
	return s.redirectMatcher.Match(p)
}
