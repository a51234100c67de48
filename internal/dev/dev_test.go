package dev

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/polyroute/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newProject creates a project with an about-us page localized in fr-CA.
func newProject(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pages", "index.tsx"), "")
	writeFile(t, filepath.Join(dir, "pages", "about-us.tsx"), "")
	writeFile(t, filepath.Join(dir, "pages", "about-us.fr-CA.properties"), "shop.aboutUs.slug = À propos de nous\n")

	cfg := config.New()
	cfg.ApplicationID = "shop"
	cfg.Locales = []string{"en-US", "fr-CA"}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	return cfg, dir
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "about.tsx")
	writeFile(t, testFile, "export default {}")

	watcher := NewWatcher(WatcherConfig{
		Paths:      []string{tmpDir},
		Extensions: []string{".tsx"},
		Interval:   20 * time.Millisecond,
	})

	changes := make(chan []Change, 10)
	watcher.OnChange(func(c []Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)

	// Wait for initial scan
	time.Sleep(60 * time.Millisecond)

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(testFile, future, future); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-changes:
		if len(batch) != 1 {
			t.Fatalf("Expected one change, got %v", batch)
		}
		if batch[0].Type != ChangePage || batch[0].Path != testFile {
			t.Errorf("Change = %+v", batch[0])
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for change")
	}

	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("Watcher should be stopped")
	}
}

func TestWatcher_NewAndDeletedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "old.fr-CA.properties")
	writeFile(t, existing, "")

	watcher := NewWatcher(WatcherConfig{
		Paths:      []string{tmpDir},
		Extensions: []string{".tsx"},
		Interval:   20 * time.Millisecond,
	})

	changes := make(chan []Change, 10)
	watcher.OnChange(func(c []Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)
	time.Sleep(60 * time.Millisecond)

	added := filepath.Join(tmpDir, "new.fr-CA.properties")
	writeFile(t, added, "")
	if err := os.Remove(existing); err != nil {
		t.Fatal(err)
	}

	seen := map[string]Change{}
	deadline := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case batch := <-changes:
			for _, c := range batch {
				seen[c.Path] = c
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for changes, got %v", seen)
		}
	}

	if c := seen[added]; c.Type != ChangeMessages || c.Removed {
		t.Errorf("added change = %+v", c)
	}
	if c := seen[existing]; c.Type != ChangeMessages || !c.Removed {
		t.Errorf("removed change = %+v", c)
	}
}

func TestWatcher_Ignore(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		Ignore: []string{"node_modules", "*.swp", "pages/drafts"},
	})

	tests := []struct {
		path   string
		ignore bool
	}{
		{"/p/node_modules/x.tsx", true},
		{"/p/pages/about.tsx.swp", true},
		{"/p/pages/drafts/a.tsx", true},
		{"/p/pages/about.tsx", false},
		{"/p/pages/draftsman.tsx", false},
	}

	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.ignore {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.ignore)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	w := NewWatcher(WatcherConfig{Extensions: []string{".tsx", ".jsx"}})

	tests := []struct {
		path string
		want ChangeType
	}{
		{"pages/about.fr-CA.properties", ChangeMessages},
		{"pages/about.properties", ChangeOther},
		{"pages/about.tsx", ChangePage},
		{"pages/shop", ChangePage},
		{"pages/styles.css", ChangeOther},
	}

	for _, tt := range tests {
		if got := w.classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCoordinator_InitialSnapshot(t *testing.T) {
	cfg, _ := newProject(t)

	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}

	snap := c.Snapshot()
	if snap.Version != 1 || snap.Stale {
		t.Errorf("Snapshot = %+v", snap)
	}
	m, ok := c.Rules().MatchRewrite("/fr-ca/%C3%A0-propos-de-nous")
	if !ok || m.Path != "/fr-ca/about-us" {
		t.Errorf("MatchRewrite() = %+v, %v", m, ok)
	}
}

func TestCoordinator_HandleRouteChange(t *testing.T) {
	cfg, dir := newProject(t)
	var logs syncBuffer
	touched := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
		Now:    func() time.Time { return touched },
	})
	if err != nil {
		t.Fatal(err)
	}

	messagesFile := filepath.Join(dir, "pages", "about-us.fr-CA.properties")
	writeFile(t, messagesFile, "shop.aboutUs.slug = Qui sommes-nous\n")

	snap := c.Handle(context.Background(), []Change{{Path: messagesFile, Type: ChangeMessages}})
	if snap.Version != 2 || !snap.Stale {
		t.Errorf("Snapshot = %+v, want a stale version 2", snap)
	}
	if len(snap.Files) != 1 || snap.Files[0] != "pages/about-us.fr-CA.properties" {
		t.Errorf("Files = %v", snap.Files)
	}
	if c.Snapshot() != snap {
		t.Error("Handle() should swap the current snapshot")
	}
	if _, ok := c.Rules().MatchRewrite("/fr-ca/qui-sommes-nous"); !ok {
		t.Error("new slug should be served")
	}
	if !strings.Contains(logs.String(), "restart the server") {
		t.Errorf("expected a restart warning, got %q", logs.String())
	}

	info, err := os.Stat(filepath.Join(dir, "pages", "about-us.tsx"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(touched) {
		t.Errorf("page source ModTime = %v, want %v", info.ModTime(), touched)
	}
}

func TestCoordinator_HandleWithoutRouteChange(t *testing.T) {
	cfg, dir := newProject(t)
	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	first := c.Snapshot()

	if snap := c.Handle(context.Background(), []Change{{Path: filepath.Join(dir, "pages", "site.css"), Type: ChangeOther}}); snap != first {
		t.Error("non-qualifying changes should not rebuild")
	}

	messagesFile := filepath.Join(dir, "pages", "about-us.fr-CA.properties")
	writeFile(t, messagesFile, "shop.aboutUs.slug = À propos de nous\nshop.aboutUs.title = À propos\n")
	snap := c.Handle(context.Background(), []Change{{Path: messagesFile, Type: ChangeMessages}})
	if snap.Version != 2 || snap.Stale {
		t.Errorf("Snapshot = %+v, want a fresh version 2", snap)
	}
}

func TestCoordinator_BuildFailureKeepsSnapshot(t *testing.T) {
	cfg, dir := newProject(t)
	var logs syncBuffer
	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	first := c.Snapshot()

	pages := filepath.Join(dir, "pages")
	if err := os.RemoveAll(pages); err != nil {
		t.Fatal(err)
	}

	snap := c.Handle(context.Background(), []Change{{Path: pages, Type: ChangePage, Removed: true}})
	if snap != first || c.Snapshot() != first {
		t.Error("a failed rebuild should keep the previous snapshot")
	}
	if !strings.Contains(logs.String(), "rebuild failed") {
		t.Errorf("expected a rebuild failure log, got %q", logs.String())
	}
}

func TestCoordinator_NotifiesClients(t *testing.T) {
	cfg, dir := newProject(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	hub := NewHub(logger)
	defer hub.Close()

	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{Logger: logger, Hub: hub})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello Event
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if hello.Type != EventHello || hello.Client == "" || hello.Version != 1 {
		t.Errorf("hello = %+v", hello)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	messagesFile := filepath.Join(dir, "pages", "about-us.fr-CA.properties")
	writeFile(t, messagesFile, "shop.aboutUs.slug = Équipe\n")
	c.Handle(context.Background(), []Change{{Path: messagesFile, Type: ChangeMessages}})

	var stale Event
	if err := conn.ReadJSON(&stale); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if stale.Type != EventStale || stale.Version != 2 || len(stale.Files) != 1 {
		t.Errorf("stale = %+v", stale)
	}
}

func TestCoordinator_Run(t *testing.T) {
	cfg, dir := newProject(t)
	cfg.Dev.PollInterval = "20ms"
	c, err := NewCoordinator(context.Background(), cfg, CoordinatorOptions{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	time.Sleep(60 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "pages", "contact.tsx"), "")

	deadline := time.Now().Add(2 * time.Second)
	for c.Snapshot().Version == 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if snap := c.Snapshot(); snap.Version < 2 || !snap.Stale {
		t.Errorf("Snapshot = %+v, want a stale rebuild", snap)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Run() did not return after cancel")
	}
}
