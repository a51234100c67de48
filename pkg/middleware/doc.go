// Package middleware applies compiled polyroute rules to net/http requests.
//
// The middlewares compose with any router that accepts
// func(http.Handler) http.Handler, such as chi:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(),
//	    middleware.Redirects(src),
//	    middleware.Rewrites(src),
//	    middleware.LocaleDetection(negotiator, negotiate.DefaultCookieConfig()),
//	)
//
// # Redirects and Rewrites
//
// Redirects sends alternate Unicode encodings of a localized URL to its
// canonical form with a 308. Rewrites maps the localized URL to its
// canonical internal route so handlers are registered once, with
// non-localized paths:
//
//	GET /fr-ca/%C3%A0-propos-de-nous → handler for /fr-ca/about-us
//
// The original request path stays available through OriginalPath.
//
// # Locale Detection
//
// LocaleDetection reads the locale prefix of the URL and, when the client
// did not choose one, negotiates it from the locale cookie and the
// Accept-Language header. The outcome is read back with
// ResolutionFromContext.
//
// # Observability
//
// Prometheus and OpenTelemetry must come first in the chain: they install
// the per-request state the other middlewares report into.
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
