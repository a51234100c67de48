package middleware

import (
	"net/http"

	"github.com/vango-dev/polyroute/pkg/routepath"
)

// Rewrites maps localized request paths to their canonical route before
// calling next. Requests without a matching rule pass through unchanged.
func Rewrites(src RuleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, set := ruleSet(r, src)
			if set == nil {
				next.ServeHTTP(w, r)
				return
			}

			escaped := r.URL.EscapedPath()
			cleaned, err := routepath.Clean(escaped)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			m, ok := set.MatchRewrite(cleaned.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			st := stateFromContext(r.Context())
			st.originalPath = escaped
			st.rewrittenTo = m.Path
			st.metrics.recordRewrite()

			r2 := r.Clone(r.Context())
			r2.URL.Path = routepath.Decode(m.Path)
			r2.URL.RawPath = ""
			r2.RequestURI = r2.URL.RequestURI()
			next.ServeHTTP(w, r2)
		})
	}
}
