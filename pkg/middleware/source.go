package middleware

import (
	"context"
	"net/http"

	"github.com/vango-dev/polyroute/pkg/negotiate"
	"github.com/vango-dev/polyroute/pkg/rules"
)

// RuleSource provides the rule set to apply to a request. Implementations
// must be safe for concurrent use; the dev coordinator swaps its set while
// requests are in flight.
type RuleSource interface {
	Rules() *rules.Set
}

type staticSource struct {
	set *rules.Set
}

func (s staticSource) Rules() *rules.Set { return s.set }

// Static returns a RuleSource that always serves set.
func Static(set *rules.Set) RuleSource {
	return staticSource{set: set}
}

// requestState collects what the middlewares did to a request so outer
// middlewares (metrics, tracing) can report it after the handler ran.
type requestState struct {
	originalPath string
	rewrittenTo  string
	redirectedTo string
	resolution   *negotiate.Resolution

	// rules is loaded once so every middleware of a request sees the
	// same set
	rules       *rules.Set
	rulesLoaded bool

	metrics *Metrics
}

type stateKey struct{}

// withState returns the request state, installing a new one when absent.
func withState(r *http.Request) (*http.Request, *requestState) {
	if st, ok := r.Context().Value(stateKey{}).(*requestState); ok {
		return r, st
	}
	st := &requestState{}
	return r.WithContext(context.WithValue(r.Context(), stateKey{}, st)), st
}

// ruleSet returns the rule set of a request. The first call loads it from src
// and later calls, from any middleware, reuse it.
func ruleSet(r *http.Request, src RuleSource) (*http.Request, *rules.Set) {
	r, st := withState(r)
	if !st.rulesLoaded {
		st.rules = src.Rules()
		st.rulesLoaded = true
	}
	return r, st.rules
}

func stateFromContext(ctx context.Context) *requestState {
	st, _ := ctx.Value(stateKey{}).(*requestState)
	return st
}

// OriginalPath returns the escaped request path before Rewrites changed it.
// ok is false when the request was not rewritten.
func OriginalPath(ctx context.Context) (string, bool) {
	st := stateFromContext(ctx)
	if st == nil || st.rewrittenTo == "" {
		return "", false
	}
	return st.originalPath, true
}

// ResolutionFromContext returns the locale resolved by LocaleDetection.
func ResolutionFromContext(ctx context.Context) (negotiate.Resolution, bool) {
	st := stateFromContext(ctx)
	if st == nil || st.resolution == nil {
		return negotiate.Resolution{}, false
	}
	return *st.resolution, true
}

// Locale returns the resolved locale of the request, or "".
func Locale(ctx context.Context) string {
	res, _ := ResolutionFromContext(ctx)
	return res.Locale
}
