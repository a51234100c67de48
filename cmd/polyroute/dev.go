package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/polyroute/internal/build"
	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/dev"
	"github.com/vango-dev/polyroute/pkg/middleware"
	"github.com/vango-dev/polyroute/pkg/negotiate"
)

const shutdownTimeout = 5 * time.Second

func devCmd(g *globals) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the preview server",
		Long: `Watch the pages directory and serve a preview of the localized routes.

The preview server applies the live rules to every request and answers
with the rewritten path and the resolved locale. Rule changes are pushed
to clients connected to /_polyroute/events.

Endpoints:
  /_polyroute/rules    current manifest and snapshot state
  /_polyroute/events   WebSocket notifications
  /metrics             Prometheus metrics

Examples:
  polyroute dev
  polyroute dev --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			return runDev(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from polyroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from polyroute.json)")

	return cmd
}

func runDev(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	log := logger(cfg)
	out := cmd.ErrOrStderr()

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(registry))
	hub := dev.NewHub(log)
	defer hub.Close()

	coord, err := dev.NewCoordinator(ctx, cfg, dev.CoordinatorOptions{
		Logger: log,
		Hub:    hub,
		Build:  build.Options{Recorder: metrics},
	})
	if err != nil {
		return err
	}
	snap := coord.Snapshot()
	success(out, "Built %d routes in %s", snap.Result.Tree.Len(), snap.Result.Duration.Round(time.Millisecond))

	srv := &http.Server{
		Addr:              cfg.DevAddress(),
		Handler:           previewRouter(cfg, log, coord, hub, metrics, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return coord.Run(ctx)
	})
	grp.Go(func() error {
		info(out, "Preview server on %s", cfg.DevURL())
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-ctx.Done()
		info(out, "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return grp.Wait()
}

type rulesResponse struct {
	Version uint64    `json:"version"`
	Stale   bool      `json:"stale"`
	BuiltAt time.Time `json:"builtAt"`
	Routes  int       `json:"routes"`
	Files   []string  `json:"files,omitempty"`

	Manifest any `json:"manifest"`
}

// previewRouter serves the dev endpoints and applies the live rules to
// every other request.
func previewRouter(cfg *config.Config, log *slog.Logger, coord *dev.Coordinator, hub *dev.Hub, metrics *middleware.Metrics, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/_polyroute/rules", func(w http.ResponseWriter, req *http.Request) {
		snap := coord.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		enc.Encode(rulesResponse{
			Version:  snap.Version,
			Stale:    snap.Stale,
			BuiltAt:  snap.BuiltAt,
			Routes:   snap.Result.Tree.Len(),
			Files:    snap.Files,
			Manifest: snap.Result.Rules.Manifest(),
		})
	})
	r.Handle("/_polyroute/events", hub)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	neg := negotiate.New(coord.Snapshot().Result.Locales, log)
	r.Group(func(r chi.Router) {
		r.Use(
			metrics.Middleware,
			middleware.OpenTelemetry(),
			middleware.Redirects(coord),
			middleware.Rewrites(coord),
			middleware.LocaleDetection(neg, cfg.CookieSettings()),
		)
		r.HandleFunc("/*", echo)
	})

	return r
}

// echo answers with what the middlewares did to the request.
func echo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	original, _ := middleware.OriginalPath(r.Context())
	if original == "" {
		original = r.URL.EscapedPath()
	}
	fmt.Fprintf(w, "path:     %s\n", original)
	fmt.Fprintf(w, "route:    %s\n", r.URL.Path)
	if res, ok := middleware.ResolutionFromContext(r.Context()); ok {
		fmt.Fprintf(w, "locale:   %s (%s)\n", res.Locale, res.Source)
	}
}
