package middleware

import (
	"net/http"

	"github.com/vango-dev/polyroute/pkg/locale"
	"github.com/vango-dev/polyroute/pkg/negotiate"
	"github.com/vango-dev/polyroute/pkg/routepath"
)

// LocaleDetection resolves the locale of every request and stores it in the
// request context.
//
// The first path segment is the URL locale when it is a locale; otherwise
// the request is treated as using the default-detection locale. A locale
// chosen in the URL is persisted in the cookie; an invalid cookie is
// cleared.
func LocaleDetection(neg *negotiate.Negotiator, cookies negotiate.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			urlLocale := neg.Locales().Default()
			if segs := routepath.Split(r.URL.Path); len(segs) > 0 && locale.IsLocale(segs[0]) {
				urlLocale = segs[0]
			}

			cookie := cookies.Read(r)
			res := neg.Resolve(negotiate.Request{
				Locale:         urlLocale,
				AcceptLanguage: r.Header.Get("Accept-Language"),
				Cookie:         cookie,
			})

			r, st := withState(r)
			st.resolution = &res
			st.metrics.recordResolution(res)

			switch {
			case res.ClearCookie:
				cookies.Clear(w)
			case res.Source == negotiate.SourceURL && !locale.Equal(cookie, res.Locale):
				cookies.Set(w, res.Locale)
			}

			next.ServeHTTP(w, r)
		})
	}
}
