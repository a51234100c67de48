package dev

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/polyroute/pkg/messages"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeMessages is a label source (.properties) change.
	ChangeMessages ChangeType = iota
	// ChangePage is a page file or directory change.
	ChangePage
	// ChangeOther is any other file.
	ChangeOther
)

func (t ChangeType) String() string {
	switch t {
	case ChangeMessages:
		return "messages"
	case ChangePage:
		return "page"
	default:
		return "other"
	}
}

// Change represents a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// Qualifies reports whether the change can alter the route tree.
func (c Change) Qualifies() bool {
	return c.Type != ChangeOther
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Extensions are the page file extensions (e.g. ".tsx").
	Extensions []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Interval is the delay between two scans.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	".next",
	"dist",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes by polling modification times.
type Watcher struct {
	config      WatcherConfig
	onChange    func([]Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes. It receives every change
// found by one scan, sorted by path.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching for file changes. It blocks until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scanInitial builds the initial timestamp map.
func (w *Watcher) scanInitial() {
	current := w.scan()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.timestamps = current
	w.initialized = true
}

// scan returns the modification time of every watched path. Directories
// are included since adding or removing one can change routes.
func (w *Watcher) scan() map[string]time.Time {
	found := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if d.IsDir() {
				// Directory mtimes change with their entries; track presence only.
				found[p] = time.Time{}
				return nil
			}
			found[p] = info.ModTime()
			return nil
		})
	}
	return found
}

// checkForChanges scans for added, modified and deleted paths.
func (w *Watcher) checkForChanges() {
	current := w.scan()

	w.mu.Lock()
	callback := w.onChange
	initialized := w.initialized
	previous := w.timestamps
	w.timestamps = current
	w.mu.Unlock()

	if callback == nil || !initialized {
		return
	}

	var changes []Change
	for p, modTime := range current {
		lastMod, exists := previous[p]
		if !exists || modTime.After(lastMod) {
			changes = append(changes, Change{Path: p, Type: w.classifyChange(p)})
		}
	}
	for p := range previous {
		if _, exists := current[p]; !exists {
			changes = append(changes, Change{Path: p, Type: w.classifyChange(p), Removed: true})
		}
	}
	if len(changes) == 0 {
		return
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	callback(changes)
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, pattern) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

// classifyChange determines the type of change from the path.
func (w *Watcher) classifyChange(p string) ChangeType {
	if strings.HasSuffix(p, messages.FileExtension) {
		if _, _, ok := messages.ParseFilePath(filepath.ToSlash(p)); ok {
			return ChangeMessages
		}
		return ChangeOther
	}

	ext := strings.ToLower(filepath.Ext(p))
	if ext == "" {
		// Extensionless paths are directories (or were, when removed).
		return ChangePage
	}
	for _, pageExt := range w.config.Extensions {
		if ext == pageExt {
			return ChangePage
		}
	}
	return ChangeOther
}

func pathHasSegment(p, segment string) bool {
	for _, part := range splitPathSegments(p) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(p, pattern string) bool {
	pathParts := splitPathSegments(p)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

// fileExists reports whether p is an existing regular file.
func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
