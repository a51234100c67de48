package build

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/locale"
	"github.com/vango-dev/polyroute/pkg/messages"
	"github.com/vango-dev/polyroute/pkg/middleware"
	"github.com/vango-dev/polyroute/pkg/routes"
	"github.com/vango-dev/polyroute/pkg/rules"
)

const tracerName = "polyroute/build"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Locales is the locale set the tree was built for.
	Locales *locale.Set

	Tree  *routes.Tree
	Rules *rules.Set

	// Diagnostics are the problems found while building the tree.
	Diagnostics []routes.Diagnostic
}

// Recorder receives build statistics. *middleware.Metrics implements it.
type Recorder interface {
	RecordBuild(routes int, d time.Duration)
}

type recorderFunc func(int, time.Duration)

func (f recorderFunc) RecordBuild(n int, d time.Duration) { f(n, d) }

// Options configures the builder.
type Options struct {
	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// FS overrides the project filesystem. Default: the config directory.
	FS fs.FS

	// Recorder receives build statistics. Default: middleware.RecordBuild.
	Recorder Recorder

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs builds for one project configuration.
type Builder struct {
	config  *config.Config
	options Options
	tracer  trace.Tracer
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.FS == nil {
		options.FS = cfg.FS()
	}
	if options.Recorder == nil {
		options.Recorder = recorderFunc(middleware.RecordBuild)
	}

	var tracer trace.Tracer
	if options.TracerProvider != nil {
		tracer = options.TracerProvider.Tracer(tracerName)
	} else {
		tracer = otel.Tracer(tracerName)
	}

	return &Builder{
		config:  cfg,
		options: options,
		tracer:  tracer,
	}
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config {
	return b.config
}

// Build builds the route tree and compiles the rules.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	_, span := b.tracer.Start(ctx, "polyroute.build")
	defer span.End()

	result, err := b.build()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("polyroute.routes", result.Tree.Len()),
		attribute.Int("polyroute.rewrites", len(result.Rules.Rewrites())),
		attribute.Int("polyroute.redirects", len(result.Rules.Redirects())),
		attribute.Int("polyroute.diagnostics", len(result.Diagnostics)),
	)
	span.SetStatus(codes.Ok, "")
	b.options.Recorder.RecordBuild(result.Tree.Len(), result.Duration)

	if b.config.Debug {
		b.debug(result)
	}
	return result, nil
}

func (b *Builder) build() (*Result, error) {
	b.progress("Loading locales...")
	set, err := b.config.LocaleSet()
	if err != nil {
		return nil, err
	}

	b.progress("Building routes...")
	resolver := messages.NewResolver(b.options.FS, b.config.ApplicationID, b.options.Logger)
	tree, err := routes.NewBuilder(b.options.FS, set.Actual(), resolver,
		routes.WithLogger(b.options.Logger),
		routes.WithPagesDirectories(b.config.PagesDirectories...),
		routes.WithExtensions(b.config.Extensions...),
	).Build()
	if err != nil {
		switch {
		case stderrors.Is(err, routes.ErrNoPagesDirectory):
			return nil, errors.New("E102").Wrap(err)
		case stderrors.Is(err, routes.ErrNoLocales):
			return nil, errors.New("E104").Wrap(err)
		}
		return nil, errors.Newf(errors.CategoryBuild, "building routes").Wrap(err)
	}

	b.progress("Compiling rules...")
	return &Result{
		Locales:     set,
		Tree:        tree,
		Rules:       rules.Compile(tree, set),
		Diagnostics: tree.Diagnostics(),
	}, nil
}

func (b *Builder) debug(result *Result) {
	logger := b.options.Logger
	for _, r := range result.Tree.Routes() {
		logger.Debug("route",
			"file", r.FilesystemPath(),
			"path", r.NonLocalizedPath(),
			"localized", r.LocalizedPaths(),
		)
	}
	for _, r := range result.Rules.Rewrites() {
		logger.Debug("rewrite", "source", r.Source, "destination", r.Destination)
	}
	for _, r := range result.Rules.Redirects() {
		logger.Debug("redirect", "source", r.Source, "destination", r.Destination)
	}
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
