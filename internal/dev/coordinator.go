package dev

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/polyroute/internal/build"
	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/pkg/messages"
	"github.com/vango-dev/polyroute/pkg/rules"
)

// Snapshot is an immutable build of the project.
type Snapshot struct {
	// Version increases with every successful rebuild.
	Version uint64

	Result  *build.Result
	BuiltAt time.Time

	// Stale is set once routes differ from the ones the host started
	// with. It is never cleared: the host must be restarted.
	Stale bool

	// Files are the changes that produced this snapshot.
	Files []string
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Logger receives rebuild logs. Default: slog.Default().
	Logger *slog.Logger

	// Build configures the builder. Its Logger defaults to Logger.
	Build build.Options

	// Hub is notified of rebuilds. Optional.
	Hub *Hub

	// Now returns the time used to touch page sources. Default: time.Now.
	Now func() time.Time
}

// Coordinator owns the current snapshot. Only its rebuild loop writes the
// snapshot; Rules and Snapshot are safe for concurrent use.
type Coordinator struct {
	cfg     *config.Config
	builder *build.Builder
	hub     *Hub
	logger  *slog.Logger
	now     func() time.Time

	current atomic.Pointer[Snapshot]
	failed  atomic.Bool
}

// NewCoordinator runs the initial build. Its error is the build error.
func NewCoordinator(ctx context.Context, cfg *config.Config, opts CoordinatorOptions) (*Coordinator, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Build.Logger == nil {
		opts.Build.Logger = opts.Logger
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Coordinator{
		cfg:     cfg,
		builder: build.New(cfg, opts.Build),
		hub:     opts.Hub,
		logger:  opts.Logger,
		now:     opts.Now,
	}

	result, err := c.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(&Snapshot{Version: 1, Result: result, BuiltAt: c.now()})

	if c.hub != nil {
		c.hub.setVersion(func() uint64 { return c.Snapshot().Version })
	}
	return c, nil
}

// Snapshot returns the current snapshot.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.current.Load()
}

// Rules returns the rules of the current snapshot. It implements
// middleware.RuleSource.
func (c *Coordinator) Rules() *rules.Set {
	return c.Snapshot().Result.Rules
}

// Watcher creates a watcher for the pages directory of the project.
func (c *Coordinator) Watcher() (*Watcher, error) {
	pagesPath, err := c.cfg.PagesPath()
	if err != nil {
		return nil, err
	}
	return NewWatcher(WatcherConfig{
		Paths:      []string{pagesPath},
		Extensions: c.cfg.Extensions,
		Interval:   c.cfg.PollInterval(),
	}), nil
}

// Run watches the project and rebuilds on every qualifying change until
// ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	w, err := c.Watcher()
	if err != nil {
		return err
	}

	batches := make(chan []Change, 16)
	w.OnChange(func(changes []Change) {
		select {
		case batches <- changes:
		case <-ctx.Done():
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Start(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changes := <-batches:
				c.Handle(ctx, changes)
			}
		}
	})

	if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Handle rebuilds the project for a batch of changes and swaps the
// snapshot if the build succeeds. It returns the current snapshot.
func (c *Coordinator) Handle(ctx context.Context, changes []Change) *Snapshot {
	var files []string
	for _, change := range changes {
		if !change.Qualifies() {
			continue
		}
		files = append(files, c.relative(change.Path))
		if change.Type == ChangeMessages && !change.Removed && c.cfg.ShouldTouchSources() {
			c.touchSource(change.Path)
		}
	}
	if len(files) == 0 {
		return c.Snapshot()
	}

	prev := c.Snapshot()
	result, err := c.builder.Build(ctx)
	if err != nil {
		c.failed.Store(true)
		c.logger.Error("rebuild failed", "files", files, "error", err)
		c.broadcast(Event{Type: EventError, Error: err.Error(), Files: files})
		return prev
	}

	changed := !result.Tree.Equal(prev.Result.Tree)
	next := &Snapshot{
		Version: prev.Version + 1,
		Result:  result,
		BuiltAt: c.now(),
		Stale:   prev.Stale || changed,
		Files:   files,
	}
	c.current.Store(next)
	recovered := c.failed.Swap(false)

	switch {
	case changed:
		c.logger.Warn("found a change impacting localized URLs, restart the server to see the changes in effect",
			"files", files,
			"routes", result.Tree.Len(),
		)
		c.broadcast(Event{Type: EventStale, Version: next.Version, Files: files})
	case recovered:
		c.broadcast(Event{Type: EventRebuild, Version: next.Version, Files: files})
	default:
		c.logger.Debug("rebuilt without route changes", "files", files, "duration", result.Duration)
	}
	return next
}

// touchSource updates the modification time of the page file a label
// source belongs to, so that bundlers watching the page recompile it.
func (c *Coordinator) touchSource(messagesPath string) {
	for _, ext := range c.cfg.Extensions {
		source := messages.SourceFilePath(messagesPath, ext)
		if source == "" || !fileExists(source) {
			continue
		}
		now := c.now()
		if err := os.Chtimes(source, now, now); err != nil {
			c.logger.Warn("cannot touch page source", "file", c.relative(source), "error", err)
		}
		return
	}
}

func (c *Coordinator) relative(p string) string {
	if dir := c.cfg.Dir(); dir != "" {
		if rel, err := filepath.Rel(dir, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func (c *Coordinator) broadcast(event Event) {
	if c.hub != nil {
		c.hub.Broadcast(event)
	}
}
