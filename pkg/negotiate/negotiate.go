// Package negotiate resolves which locale to serve for a request when the
// client did not explicitly choose one.
//
// Resolution order:
//
//  1. The locale in the URL, when it is an actual locale.
//  2. The locale persisted in the cookie, when valid. An invalid cookie is
//     reported so it can be cleared.
//  3. The Accept-Language header: an exact locale match, a language-only
//     directive matching an actual locale's language, or a same-language
//     locale with another region.
//  4. The actual default locale (the first configured locale).
package negotiate

import (
	"log/slog"

	"github.com/vango-dev/polyroute/pkg/locale"
)

// Source is where a resolved locale came from.
type Source string

const (
	SourceURL     Source = "url"
	SourceCookie  Source = "cookie"
	SourceHeader  Source = "header"
	SourceDefault Source = "default"
)

// Request holds the request attributes used by negotiation.
type Request struct {
	// Locale is the locale found in the URL. The default-detection locale
	// or "" means the client did not choose one.
	Locale string

	// AcceptLanguage is the raw Accept-Language header value.
	AcceptLanguage string

	// Cookie is the persisted locale, "" when absent.
	Cookie string
}

// Resolution is the outcome of negotiation.
type Resolution struct {
	// Locale is the normalized actual locale to serve.
	Locale string

	Source Source

	// ClearCookie is true when the request carried an invalid cookie.
	ClearCookie bool
}

// Negotiator resolves locales against a fixed set of actual locales. It is
// safe for concurrent use.
type Negotiator struct {
	locales *locale.Set
	logger  *slog.Logger
}

// New creates a negotiator. A nil logger uses slog.Default().
func New(locales *locale.Set, logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Negotiator{locales: locales, logger: logger}
}

// Locales returns the locale set the negotiator resolves against.
func (n *Negotiator) Locales() *locale.Set {
	return n.locales
}

// Resolve negotiates the locale of a request.
func (n *Negotiator) Resolve(req Request) Resolution {
	if req.Locale != "" && !n.locales.IsDefault(req.Locale) {
		if l, ok := n.locales.Lookup(req.Locale); ok {
			return Resolution{Locale: l, Source: SourceURL}
		}
		n.logger.Warn("unrecognized locale in URL", "locale", req.Locale)
	}

	var res Resolution
	if req.Cookie != "" {
		if l, ok := n.locales.Lookup(req.Cookie); ok {
			return Resolution{Locale: l, Source: SourceCookie}
		}
		n.logger.Warn("invalid locale cookie", "locale", req.Cookie)
		res.ClearCookie = true
	}

	if l, ok := n.matchAcceptLanguage(req.AcceptLanguage); ok {
		res.Locale, res.Source = l, SourceHeader
		return res
	}

	res.Locale, res.Source = n.locales.ActualDefault(), SourceDefault
	return res
}

// ResolveLocale negotiates a locale from raw values. configuredLocales is
// the framework locale list, which may include defaultLocale (the
// default-detection locale); invalid entries are ignored. clearCookie
// reports an invalid cookie value. With no valid configured locale it
// returns "".
func ResolveLocale(requestLocale, defaultLocale string, configuredLocales []string, acceptLanguage, cookieValue string) (resolved string, clearCookie bool) {
	var valid []string
	for _, l := range locale.ActualLocales(configuredLocales, defaultLocale) {
		if locale.IsLocale(l) {
			valid = append(valid, l)
		}
	}
	set, err := locale.NewSet(valid)
	if err != nil {
		return "", false
	}

	if locale.Equal(requestLocale, defaultLocale) {
		requestLocale = ""
	}
	res := New(set, nil).Resolve(Request{
		Locale:         requestLocale,
		AcceptLanguage: acceptLanguage,
		Cookie:         cookieValue,
	})
	return res.Locale, res.ClearCookie
}
