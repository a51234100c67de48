package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vango-dev/polyroute/pkg/locale"
)

// Build errors that prevent any route from being produced.
var (
	ErrNoPagesDirectory = errors.New("unable to find the pages directory")
	ErrNoLocales        = errors.New("no locales to localize routes with")
)

// SlugResolver provides the localized slugs of pages.
type SlugResolver interface {
	// ResolveSlug returns the slug of a page file or directory in locale,
	// or "" when none is available.
	ResolveSlug(filesystemPath, locale string) string

	// SlugFiles returns the label sources of a page that define a slug.
	SlugFiles(filesystemPath string, locales []string) []string
}

// Builder builds a route Tree from a filesystem rooted at the project
// directory.
type Builder struct {
	fsys       fs.FS
	locales    []string
	resolver   SlugResolver
	logger     *slog.Logger
	pagesDirs  []string
	extensions []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPagesDirectories overrides PagesDirectories.
func WithPagesDirectories(dirs ...string) Option {
	return func(b *Builder) {
		if len(dirs) > 0 {
			b.pagesDirs = dirs
		}
	}
}

// WithExtensions overrides PageExtensions.
func WithExtensions(exts ...string) Option {
	return func(b *Builder) {
		if len(exts) > 0 {
			b.extensions = exts
		}
	}
}

// NewBuilder creates a builder for the given actual locales. Locales are
// normalized to the ll-CC form. A nil resolver yields non-localized paths in
// every locale.
func NewBuilder(fsys fs.FS, locales []string, resolver SlugResolver, opts ...Option) *Builder {
	normalized := make([]string, len(locales))
	for i, l := range locales {
		normalized[i] = locale.Normalize(l)
	}
	if resolver == nil {
		resolver = noSlugs{}
	}
	b := &Builder{
		fsys:       fsys,
		locales:    normalized,
		resolver:   resolver,
		logger:     slog.Default(),
		pagesDirs:  PagesDirectories,
		extensions: PageExtensions,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PagesDirectory returns the first pages directory that exists.
func (b *Builder) PagesDirectory() (string, error) {
	for _, dir := range b.pagesDirs {
		info, err := fs.Stat(b.fsys, dir)
		if err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w (looked for %s)", ErrNoPagesDirectory, strings.Join(b.pagesDirs, ", "))
}

// Build walks the pages directory depth first and returns the route tree.
// Only a missing pages directory, an empty locale list or an unreadable
// directory fail the build; everything else is a diagnostic.
func (b *Builder) Build() (*Tree, error) {
	if len(b.locales) == 0 {
		return nil, ErrNoLocales
	}
	dir, err := b.PagesDirectory()
	if err != nil {
		return nil, err
	}

	tree := newTree(dir, b.locales)
	c := newChecker(tree, b.logger, b.pagesDirs, b.extensions)
	if err := b.walk(dir, c); err != nil {
		return nil, err
	}
	return tree, nil
}

func (b *Builder) walk(dir string, c *checker) error {
	urlPath := DirectoryPath(dir, c.tree.pagesDir)
	if IsAPIPath(urlPath) {
		return nil
	}

	entries, err := fs.ReadDir(b.fsys, dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	indexFound := false
	for _, ext := range b.extensions {
		if hasFile(entries, "index"+ext) {
			indexFound = true
			b.addPage(dir+"/index"+ext, c)
			break
		}
	}

	if !indexFound && urlPath != "/" {
		b.addDirectory(dir, c)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !slices.Contains(b.extensions, path.Ext(name)) || RemoveFileExtension(name) == "index" {
			continue
		}
		b.addPage(dir+"/"+name, c)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := b.walk(dir+"/"+e.Name(), c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addPage(pageFile string, c *checker) {
	if path.Ext(pageFile) == "" {
		c.invalidPageFile(pageFile)
		return
	}

	urlPath := NonLocalizedPath(pageFile, c.tree.pagesDir)
	if IsAPIPath(urlPath) {
		return
	}

	slugFiles := b.resolver.SlugFiles(pageFile, b.locales)
	if c.isNonRoutable(pageFile, urlPath, slugFiles) {
		return
	}
	if c.isDuplicate(pageFile, urlPath, slugFiles) {
		return
	}
	c.checkDynamic(pageFile, urlPath, slugFiles)

	b.register(pageFile, urlPath, c)
}

// addDirectory registers a directory without index file. A page file with
// the same path (hello.tsx next to hello/) already owns the route.
func (b *Builder) addDirectory(dir string, c *checker) {
	urlPath := DirectoryPath(dir, c.tree.pagesDir)
	if _, ok := c.tree.Lookup(urlPath); ok {
		return
	}
	b.register(dir, urlPath, c)
}

// register adds a route for every locale. Localized paths are NFC so that
// their encoded form matches the canonical form redirects point to.
func (b *Builder) register(filesystemPath, urlPath string, c *checker) {
	segment := norm.NFC.String(LastSegment(urlPath))
	dynamic := IsDynamicPath(urlPath)
	prefix := b.parentPrefix(filesystemPath, urlPath, c)

	r := &Route{
		filesystemPath:   filesystemPath,
		nonLocalizedPath: urlPath,
		localizedPaths:   make([]LocalizedPath, 0, len(b.locales)),
	}

	for _, l := range b.locales {
		slug := ""
		if !dynamic {
			slug = norm.NFC.String(b.resolver.ResolveSlug(filesystemPath, l))
		}

		localized := prefix(l) + "/" + segment
		if slug != "" {
			localized = prefix(l) + "/" + slug
		}

		if owner, taken := c.tree.owner(l, localized); taken {
			if slug == "" {
				c.dropped(filesystemPath, urlPath, l, localized, owner)
				return
			}
			c.collision(filesystemPath, urlPath, l, localized, owner)

			localized = prefix(l) + "/" + segment
			if owner, taken := c.tree.owner(l, localized); taken {
				c.dropped(filesystemPath, urlPath, l, localized, owner)
				return
			}
		}

		r.localizedPaths = append(r.localizedPaths, LocalizedPath{Locale: l, Path: localized})
	}

	c.tree.add(r)
}

// parentPrefix returns the localized path prefix of a route per locale.
func (b *Builder) parentPrefix(filesystemPath, urlPath string, c *checker) func(string) string {
	parentPath, ok := ParentPath(urlPath)
	if !ok {
		return func(string) string { return "" }
	}
	parent, found := c.tree.Lookup(parentPath)
	if !found {
		c.missingParent(filesystemPath, urlPath, parentPath)
		return func(string) string { return parentPath }
	}
	return parent.LocalizedPath
}

func hasFile(entries []fs.DirEntry, name string) bool {
	for _, e := range entries {
		if e.Name() == name && !e.IsDir() {
			return true
		}
	}
	return false
}

type noSlugs struct{}

func (noSlugs) ResolveSlug(string, string) string  { return "" }
func (noSlugs) SlugFiles(string, []string) []string { return nil }
