package rules

import (
	"golang.org/x/text/unicode/norm"

	"github.com/vango-dev/polyroute/pkg/locale"
	"github.com/vango-dev/polyroute/pkg/routepath"
	"github.com/vango-dev/polyroute/pkg/routes"
)

// Compile derives the rule set of a route tree.
func Compile(tree *routes.Tree, locales *locale.Set) *Set {
	actual := locales.Actual()
	return NewSet(
		CompileRewrites(tree, actual),
		CompileRedirects(tree, actual),
		locales.URLPrefixes(),
		locales.DefaultURLPrefix(),
	)
}

// CompileRewrites returns one rewrite per route and locale whose encoded
// localized path differs from its canonical path.
func CompileRewrites(tree *routes.Tree, locales []string) []Rewrite {
	var rewrites []Rewrite
	for _, r := range tree.Routes() {
		for _, l := range locales {
			localized := r.LocalizedPath(l)
			if localized == "" {
				continue
			}
			source := routepath.Normalize(localized, l, true)
			destination := routepath.Normalize(r.NonLocalizedPath(), l, false)
			if routepath.Decode(source) == destination {
				continue
			}
			rewrites = append(rewrites, Rewrite{Source: source, Destination: destination})
		}
	}
	return rewrites
}

// alternateForms are the Unicode normalization forms redirected to NFC.
var alternateForms = []norm.Form{norm.NFD, norm.NFKC, norm.NFKD}

// CompileRedirects returns the redirects that send the alternate encodings
// of every localized path to its canonical NFC percent-encoded form.
// Alternatives are tried in order: the raw UTF-8 path, then NFD, NFKC and
// NFKD. Duplicates and alternatives equal to the canonical form are skipped.
func CompileRedirects(tree *routes.Tree, locales []string) []Redirect {
	var redirects []Redirect
	for _, r := range tree.Routes() {
		for _, l := range locales {
			localized := r.LocalizedPath(l)
			if localized == "" {
				continue
			}
			source := routepath.Normalize(localized, l, false)
			canonical := routepath.Normalize(norm.NFC.String(source), "", true)

			alternatives := []string{source}
			for _, form := range alternateForms {
				alternatives = append(alternatives, routepath.Normalize(form.String(source), "", true))
			}

			seen := map[string]bool{canonical: true}
			for _, alt := range alternatives {
				if seen[alt] {
					continue
				}
				seen[alt] = true
				redirects = append(redirects, Redirect{Source: alt, Destination: canonical, Permanent: true})
			}
		}
	}
	return redirects
}
