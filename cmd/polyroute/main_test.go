package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/polyroute/internal/build"
	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/dev"
	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/middleware"
	"github.com/vango-dev/polyroute/pkg/rules"
)

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pages/index.tsx":                 "",
		"pages/about-us.tsx":              "",
		"pages/about-us.fr-CA.properties": "shop.aboutUs.slug = À propos de nous\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.New()
	cfg.ApplicationID = "shop"
	cfg.Locales = []string{"en-US", "fr-CA"}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoutesJSON(t *testing.T) {
	dir := newProject(t)

	out, err := run(t, "routes", "-C", dir, "--json")
	if err != nil {
		t.Fatalf("routes error = %v", err)
	}

	var views []routeView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(views) != 1 || views[0].Path != "/about-us" {
		t.Fatalf("routes = %+v", views)
	}
	var fr string
	for _, lp := range views[0].Localized {
		if lp.Locale == "fr-CA" {
			fr = lp.Path
		}
	}
	if fr != "/à-propos-de-nous" {
		t.Errorf("fr-CA path = %q", fr)
	}
}

func TestRoutesTable(t *testing.T) {
	out, err := run(t, "routes", "-C", newProject(t))
	if err != nil {
		t.Fatalf("routes error = %v", err)
	}
	if !strings.Contains(out, "FILE") || !strings.Contains(out, "pages/about-us.tsx") {
		t.Errorf("table = %q", out)
	}
}

func TestRewritesYAML(t *testing.T) {
	out, err := run(t, "rewrites", "-C", newProject(t), "--format", "yaml")
	if err != nil {
		t.Fatalf("rewrites error = %v", err)
	}
	if !strings.Contains(out, "source: /fr-ca/%C3%A0-propos-de-nous") || !strings.Contains(out, "destination: /fr-ca/about-us") {
		t.Errorf("yaml = %q", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "redirects", "-C", newProject(t), "--format", "xml")
	if errors.Code(err) != "E140" {
		t.Errorf("error = %v, want E140", err)
	}
}

func TestExportFile(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, "out", "manifest.json")

	if _, err := run(t, "export", "-C", dir, "-o", path); err != nil {
		t.Fatalf("export error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := rules.DecodeManifest(f)
	if err != nil {
		t.Fatal(err)
	}
	if m.I18n.DefaultLocale != "mul" || len(m.Rewrites) == 0 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestExportPublishRequiresBucket(t *testing.T) {
	_, err := run(t, "export", "-C", newProject(t), "--publish")
	if errors.Code(err) != "E103" {
		t.Errorf("error = %v, want E103", err)
	}
}

func TestResolve(t *testing.T) {
	dir := newProject(t)

	tests := []struct {
		name string
		args []string
		want resolveView
	}{
		{
			name: "localized URL",
			args: []string{"--path", "/fr-ca/%C3%A0-propos-de-nous"},
			want: resolveView{Path: "/fr-ca/%C3%A0-propos-de-nous", Status: 200, Rewrite: "/fr-ca/about-us", Locale: "fr-CA", Source: "url", SetCookie: "fr-CA"},
		},
		{
			name: "accept language",
			args: []string{"--path", "/", "--accept-language", "fr;q=0.9, en;q=0.8"},
			want: resolveView{Path: "/", Status: 200, Locale: "fr-CA", Source: "header"},
		},
		{
			name: "invalid cookie",
			args: []string{"--path", "/", "--cookie", "xx-XX"},
			want: resolveView{Path: "/", Status: 200, Locale: "en-US", Source: "default", ClearCookie: true},
		},
		{
			name: "alternate encoding",
			args: []string{"--path", "/fr-ca/a%CC%80-propos-de-nous"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"resolve", "-C", dir, "--format", "json"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("resolve error = %v", err)
			}
			var got resolveView
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if tt.name == "alternate encoding" {
				if got.Status != http.StatusPermanentRedirect || got.Redirect != "/fr-ca/%C3%A0-propos-de-nous" {
					t.Errorf("resolve = %+v, want a redirect to the NFC form", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestURL(t *testing.T) {
	out, err := run(t, "url", "-C", newProject(t), "/about-us", "--locale", "fr-ca")
	if err != nil {
		t.Fatalf("url error = %v", err)
	}
	if out != "/fr-ca/%C3%A0-propos-de-nous\n" {
		t.Errorf("url = %q", out)
	}

	if _, err := run(t, "url", "-C", newProject(t), "/about-us", "--locale", "de-DE"); errors.Code(err) != "E101" {
		t.Errorf("error = %v, want E101", err)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "init", "-C", dir, "--app", "shop", "--locales", "en-US,fr-CA"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	cfg, err := config.LoadFile(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ApplicationID != "shop" || len(cfg.Locales) != 2 {
		t.Errorf("config = %+v", cfg)
	}

	_, err = run(t, "init", "-C", dir, "--app", "shop", "--locales", "en-US")
	if errors.Code(err) != "E140" {
		t.Errorf("second init error = %v, want E140", err)
	}
}

func TestPreviewRouter(t *testing.T) {
	dir := newProject(t)
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(registry))
	hub := dev.NewHub(log)
	defer hub.Close()

	coord, err := dev.NewCoordinator(context.Background(), cfg, dev.CoordinatorOptions{
		Logger: log,
		Hub:    hub,
		Build:  build.Options{Recorder: metrics},
	})
	if err != nil {
		t.Fatal(err)
	}
	router := previewRouter(cfg, log, coord, hub, metrics, registry)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/fr-ca/%C3%A0-propos-de-nous")
	if body := rec.Body.String(); !strings.Contains(body, "route:    /fr-ca/about-us") || !strings.Contains(body, "fr-CA (url)") {
		t.Errorf("echo = %q", body)
	}

	rec = get("/_polyroute/rules")
	var resp struct {
		Version  uint64         `json:"version"`
		Routes   int            `json:"routes"`
		Manifest rules.Manifest `json:"manifest"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("rules response %q: %v", rec.Body.String(), err)
	}
	if resp.Version != 1 || resp.Routes != 1 || len(resp.Manifest.Rewrites) == 0 {
		t.Errorf("rules response = %+v", resp)
	}

	rec = get("/metrics")
	if body := rec.Body.String(); !strings.Contains(body, "polyroute_rewrites_total 1") || !strings.Contains(body, "polyroute_routes 1") {
		t.Errorf("metrics = %q", body)
	}
}
