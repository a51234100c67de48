package messages

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestFilePath(t *testing.T) {
	tests := []struct {
		fsPath string
		locale string
		want   string
	}{
		{"pages/about-us.tsx", "fr-CA", "pages/about-us.fr-CA.properties"},
		{"pages/about-us.tsx", "fr-ca", "pages/about-us.fr-CA.properties"},
		{"pages/contact/index.tsx", "en-US", "pages/contact/index.en-US.properties"},
		{"pages/contact", "en-US", "pages/contact/index.en-US.properties"},
		{"src/pages/shop/[id].jsx", "en-US", "src/pages/shop/[id].en-US.properties"},
	}

	for _, tt := range tests {
		if got := FilePath(tt.fsPath, tt.locale); got != tt.want {
			t.Errorf("FilePath(%q, %q) = %q, want %q", tt.fsPath, tt.locale, got, tt.want)
		}
	}
}

func TestDirectoryFilePath(t *testing.T) {
	tests := []struct {
		dir    string
		locale string
		want   string
	}{
		{"pages/contact", "fr-ca", "pages/contact/index.fr-CA.properties"},
		{"pages/v1.2", "en-US", "pages/v1.2/index.en-US.properties"},
		{"pages/docs.old/", "en-US", "pages/docs.old/index.en-US.properties"},
	}

	for _, tt := range tests {
		if got := DirectoryFilePath(tt.dir, tt.locale); got != tt.want {
			t.Errorf("DirectoryFilePath(%q, %q) = %q, want %q", tt.dir, tt.locale, got, tt.want)
		}
	}
}

func TestResolveDottedDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/v1.2/page.tsx":               {},
		"pages/v1.2/index.fr-CA.properties": {Data: []byte("shop.version.slug = Version 1.2\n")},
		"pages/v1.2.en-US.properties":       {Data: []byte("shop.version.slug = Wrong\n")},
	}
	r := NewResolver(fsys, "shop", nil)

	got, err := r.Resolve("pages/v1.2", "fr-CA")
	if err != nil || got != "version-1-2" {
		t.Errorf("Resolve() = %q, %v, want %q", got, err, "version-1-2")
	}
	if _, err := r.Resolve("pages/v1.2", "en-US"); !errors.Is(err, ErrMissingFile) {
		t.Errorf("Resolve(en-US) error = %v, want %v", err, ErrMissingFile)
	}
	files := r.SlugFiles("pages/v1.2", []string{"en-US", "fr-CA"})
	if want := []string{"pages/v1.2/index.fr-CA.properties"}; !reflect.DeepEqual(files, want) {
		t.Errorf("SlugFiles() = %v, want %v", files, want)
	}
}

func TestSourceFilePath(t *testing.T) {
	tests := []struct {
		messages string
		ext      string
		want     string
	}{
		{"pages/about-us.fr-CA.properties", ".tsx", "pages/about-us.tsx"},
		{"pages/contact/index.en-us.properties", ".js", "pages/contact/index.js"},
		{"pages/readme.md", ".tsx", ""},
		{"pages/about.properties", ".tsx", ""},
		{"pages/about.english.properties", ".tsx", ""},
	}

	for _, tt := range tests {
		if got := SourceFilePath(tt.messages, tt.ext); got != tt.want {
			t.Errorf("SourceFilePath(%q, %q) = %q, want %q", tt.messages, tt.ext, got, tt.want)
		}
	}
}

func TestParseFilePath(t *testing.T) {
	base, loc, ok := ParseFilePath("pages/a.b.en-us.properties")
	if !ok || base != "pages/a.b" || loc != "en-US" {
		t.Errorf("ParseFilePath() = %q, %q, %v", base, loc, ok)
	}
}

func TestValidKeySegment(t *testing.T) {
	valid := []string{"abc", "shop", "aboutUsPage", "ABC123", strings.Repeat("a", 50)}
	invalid := []string{"", "ab", "a-b-c", "with space", "dot.ted", strings.Repeat("a", 51)}

	for _, s := range valid {
		if !ValidKeySegment(s) {
			t.Errorf("ValidKeySegment(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidKeySegment(s) {
			t.Errorf("ValidKeySegment(%q) = true, want false", s)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("# comment\nshop.page.title = Hello {name}\nshop.page.slug = Über uns\nshop.page.price = ${amount}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := c.Keys(), []string{"shop.page.title", "shop.page.slug", "shop.page.price"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := c.Get("shop.page.slug"); v != "Über uns" {
		t.Errorf("Get(slug) = %q", v)
	}
	if v, _ := c.Get("shop.page.price"); v != "${amount}" {
		t.Errorf("expansion should be disabled, got %q", v)
	}
	if got := c.SlugKeys(); !reflect.DeepEqual(got, []string{"shop.page.slug"}) {
		t.Errorf("SlugKeys() = %v", got)
	}
}

func TestResolverResolve(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/about-us/index.fr-CA.properties": {Data: []byte("shop.aboutUs.slug = À propos de nous\n")},
		"pages/about-us/index.en-US.properties": {Data: []byte("shop.aboutUs.title = About\n")},
		"pages/contact.fr-CA.properties":        {Data: []byte("shop.contact.slug = Contact\nshop.other.slug = Autre\n")},
		"pages/team.fr-CA.properties":           {Data: []byte("other.team.slug = Équipe\n")},
		"pages/bad.fr-CA.properties":            {Data: []byte("shop.slug = Mauvais\n")},
		"pages/empty.fr-CA.properties":          {Data: []byte("shop.empty.slug = !!!\n")},
	}
	r := NewResolver(fsys, "shop", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	tests := []struct {
		name    string
		fsPath  string
		locale  string
		want    string
		wantErr error
	}{
		{"directory slug", "pages/about-us", "fr-CA", "à-propos-de-nous", nil},
		{"index file shares directory source", "pages/about-us/index.tsx", "fr-ca", "à-propos-de-nous", nil},
		{"no slug key", "pages/about-us", "en-US", "", ErrNoSlugKey},
		{"missing file", "pages/missing.tsx", "fr-CA", "", ErrMissingFile},
		{"ambiguous", "pages/contact.tsx", "fr-CA", "", ErrAmbiguousSlugKey},
		{"wrong application identifier", "pages/team.tsx", "fr-CA", "", ErrInvalidSlugKey},
		{"wrong key format", "pages/bad.tsx", "fr-CA", "", ErrInvalidSlugKey},
		{"empty slug", "pages/empty.tsx", "fr-CA", "", ErrEmptySlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.fsPath, tt.locale)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Resolve() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			var se *SlugError
			if !errors.As(err, &se) || se.FilesystemPath != tt.fsPath {
				t.Errorf("error should be a *SlugError naming %s, got %v", tt.fsPath, err)
			}
		})
	}
}

func TestResolveSlugLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(fstest.MapFS{}, "shop", slog.New(slog.NewTextHandler(&buf, nil)))

	if got := r.ResolveSlug("pages/about.tsx", "fr-CA"); got != "" {
		t.Errorf("ResolveSlug() = %q, want empty", got)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "pages/about.fr-CA.properties") {
		t.Errorf("expected a warning naming the messages file, got %q", out)
	}
}

func TestSlugFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/index.fr-CA.properties": {Data: []byte("shop.home.slug = Accueil\n")},
		"pages/index.en-US.properties": {Data: []byte("shop.home.title = Home\n")},
	}
	r := NewResolver(fsys, "shop", nil)

	got := r.SlugFiles("pages/index.tsx", []string{"en-US", "fr-CA", "de-DE"})
	if want := []string{"pages/index.fr-CA.properties"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SlugFiles() = %v, want %v", got, want)
	}
}
