package middleware

import (
	"net/http"
	"strings"

	"github.com/vango-dev/polyroute/pkg/routepath"
)

// Redirects permanently redirects requests whose path is an alternate
// encoding of a localized URL. The query string is preserved. A request
// already in canonical form passes through, so a redirect never loops.
func Redirects(src RuleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, set := ruleSet(r, src)
			if set == nil {
				next.ServeHTTP(w, r)
				return
			}

			cleaned, err := routepath.Clean(r.URL.EscapedPath())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			m, ok := set.MatchRedirect(cleaned.Path)
			if !ok || strings.EqualFold(m.Path, cleaned.Path) {
				next.ServeHTTP(w, r)
				return
			}

			target := m.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			st := stateFromContext(r.Context())
			st.redirectedTo = m.Path
			st.metrics.recordRedirect()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}
