package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/polyroute/pkg/negotiate"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "polyroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for build duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "polyroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the polyroute Prometheus collectors.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	redirects     prometheus.Counter
	rewrites      prometheus.Counter
	cookieClears  prometheus.Counter
	routes        prometheus.Gauge
	buildDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors. Collectors already
// registered under the same name are reused, so NewMetrics may be called
// more than once with the same registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	reg := config.Registry

	return &Metrics{
		resolutions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "locale_resolutions_total",
			Help:        "Total number of locale resolutions by source",
			ConstLabels: config.ConstLabels,
		}, []string{"source"})),

		redirects: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of requests redirected to their canonical form",
			ConstLabels: config.ConstLabels,
		})),

		rewrites: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rewrites_total",
			Help:        "Total number of localized requests rewritten to their route",
			ConstLabels: config.ConstLabels,
		})),

		cookieClears: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cookie_clears_total",
			Help:        "Total number of invalid locale cookies cleared",
			ConstLabels: config.ConstLabels,
		})),

		routes: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of routes in the last built route tree",
			ConstLabels: config.ConstLabels,
		})),

		buildDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "build_duration_seconds",
			Help:        "Route tree and rule compilation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Middleware makes m the metrics of every request passing through.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, st := withState(r)
		st.metrics = m
		next.ServeHTTP(w, r)
	})
}

// RecordBuild records a completed build.
func (m *Metrics) RecordBuild(routes int, d time.Duration) {
	if m == nil {
		return
	}
	m.routes.Set(float64(routes))
	m.buildDuration.Observe(d.Seconds())
}

func (m *Metrics) recordRedirect() {
	if m != nil {
		m.redirects.Inc()
	}
}

func (m *Metrics) recordRewrite() {
	if m != nil {
		m.rewrites.Inc()
	}
}

func (m *Metrics) recordResolution(res negotiate.Resolution) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(string(res.Source)).Inc()
	if res.ClearCookie {
		m.cookieClears.Inc()
	}
}

// globalMetrics is the instance created by the last call to Prometheus().
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// Prometheus creates middleware that collects polyroute metrics.
//
// Metrics collected:
//   - polyroute_locale_resolutions_total: Counter of resolved locales by source
//   - polyroute_redirects_total: Counter of canonical redirects
//   - polyroute_rewrites_total: Counter of localized rewrites
//   - polyroute_cookie_clears_total: Counter of invalid cookies cleared
//   - polyroute_routes: Gauge of routes in the last build (see RecordBuild)
//   - polyroute_build_duration_seconds: Histogram of build durations
//
// Example:
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	m := NewMetrics(opts...)

	globalMetricsMu.Lock()
	globalMetrics = m
	globalMetricsMu.Unlock()

	return m.Middleware
}

// RecordBuild records a completed build on the metrics created by
// Prometheus(). It does nothing before Prometheus() is called.
func RecordBuild(routes int, d time.Duration) {
	globalMetricsMu.Lock()
	m := globalMetrics
	globalMetricsMu.Unlock()
	m.RecordBuild(routes, d)
}
