package build

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/rules"
)

func testConfig(locales ...string) *config.Config {
	cfg := config.New()
	cfg.ApplicationID = "shop"
	cfg.Locales = locales
	return cfg
}

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"pages/index.tsx":                 {},
		"pages/about-us.tsx":              {},
		"pages/about-us.fr-CA.properties": {Data: []byte("shop.aboutUs.slug = À propos de nous\n")},
		"pages/hello.tsx":                 {},
		"pages/hello/index.tsx":           {},
	}
}

type recording struct {
	routes int
	calls  int
}

func (r *recording) RecordBuild(n int, _ time.Duration) {
	r.routes = n
	r.calls++
}

func TestBuild(t *testing.T) {
	var logs bytes.Buffer
	rec := &recording{}
	var steps []string

	b := New(testConfig("en-US", "fr-CA"), Options{
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
		FS:         siteFS(),
		Recorder:   rec,
		OnProgress: func(step string) { steps = append(steps, step) },
	})

	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := result.Tree.Len(); got != 2 {
		t.Errorf("Tree.Len() = %d, want 2", got)
	}
	if rec.calls != 1 || rec.routes != 2 {
		t.Errorf("recorder = %+v, want one call with 2 routes", rec)
	}
	if len(steps) != 3 {
		t.Errorf("progress steps = %v", steps)
	}
	if len(result.Diagnostics) != 1 {
		t.Errorf("Diagnostics = %v, want the hello duplicate", result.Diagnostics)
	}
	if !strings.Contains(logs.String(), "pages/hello") {
		t.Errorf("duplicate should be logged, got %q", logs.String())
	}

	want := []rules.Rewrite{
		{Source: "/fr-ca/%C3%A0-propos-de-nous", Destination: "/fr-ca/about-us"},
	}
	if diff := cmp.Diff(want, result.Rules.Rewrites()); diff != "" {
		t.Errorf("Rewrites() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mul", "en-us", "fr-ca"}, result.Rules.LocalePrefixes()); diff != "" {
		t.Errorf("LocalePrefixes() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		fsys     fstest.MapFS
		wantCode string
	}{
		{"no pages directory", testConfig("en-US"), fstest.MapFS{"app/index.tsx": {}}, "E102"},
		{"invalid locale", testConfig("english"), siteFS(), "E101"},
		{"no locales", testConfig(), siteFS(), "E101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, Options{FS: tt.fsys, Recorder: &recording{}}).Build(context.Background())
			if got := errors.Code(err); got != tt.wantCode {
				t.Errorf("Build() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestBuildDebugLogsRules(t *testing.T) {
	var logs bytes.Buffer
	cfg := testConfig("en-US", "fr-CA")
	cfg.Debug = true

	_, err := New(cfg, Options{
		Logger:   slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		FS:       siteFS(),
		Recorder: &recording{},
	}).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	out := logs.String()
	for _, want := range []string{"msg=route", "msg=rewrite", "msg=redirect", "destination=/fr-ca/about-us"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q", want)
		}
	}
}
