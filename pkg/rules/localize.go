package rules

import (
	"net/url"
	"strings"

	"github.com/vango-dev/polyroute/pkg/routepath"
)

// LocalizedURL returns the localized URL of a non-localized URL (e.g.
// "/contact-us" or "/shop/[id]?ref=mail") in locale, using the rewrites to
// find it. Parameter values are percent-encoded and substituted. Without a
// matching rewrite the URL is prefixed with the lowercase locale.
//
//	LocalizedURL(rewrites, "/about-us", "fr-CA", nil)                          // "/fr-ca/%C3%A0-propos-de-nous"
//	LocalizedURL(rewrites, "/shop/[id]", "fr-CA", map[string]string{"id": "7"}) // "/fr-ca/boutique/7"
func LocalizedURL(rewrites []Rewrite, rawURL, locale string, params map[string]string) string {
	p, suffix := splitSuffix(rawURL)
	destination := routepath.Normalize(p, locale, false)

	localized := routepath.Normalize(p, locale, true)
	for _, r := range rewrites {
		if r.Destination == destination {
			localized = r.Source
			break
		}
	}

	if len(params) > 0 {
		escaped := make(map[string]string, len(params))
		for k, v := range params {
			escaped[strings.ToLower(k)] = url.PathEscape(v)
		}
		localized = Hydrate(localized, escaped)
	}
	return localized + suffix
}

// LocalizedURL returns the localized URL of a non-localized URL in locale.
func (s *Set) LocalizedURL(rawURL, locale string, params map[string]string) string {
	return LocalizedURL(s.rewrites, rawURL, locale, params)
}

// splitSuffix separates the path of a URL from its query and fragment.
func splitSuffix(rawURL string) (p, suffix string) {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i], rawURL[i:]
	}
	return rawURL, ""
}
