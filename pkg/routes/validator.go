package routes

import (
	"fmt"
	"log/slog"
	"strings"
)

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticKind categorizes diagnostics.
type DiagnosticKind string

const (
	// KindNonRoutableSlug indicates slugs were found for a special page file
	// (_app, 404, ...) that never gets a route.
	KindNonRoutableSlug DiagnosticKind = "NON_ROUTABLE_SLUG"

	// KindDuplicateRoute indicates two pages resolve to the same
	// non-localized path. The first one wins.
	// Example: pages/hello.tsx and pages/hello/index.tsx both resolve to /hello
	KindDuplicateRoute DiagnosticKind = "DUPLICATE_ROUTE"

	// KindDynamicSlug indicates slugs were found for a dynamic route
	// ([id].tsx). They are ignored.
	KindDynamicSlug DiagnosticKind = "DYNAMIC_SLUG"

	// KindLocalizedCollision indicates a localized path already belongs to
	// another route. The non-localized segment is used instead.
	KindLocalizedCollision DiagnosticKind = "LOCALIZED_COLLISION"

	// KindDroppedRoute indicates a route was dropped because even its
	// non-localized segment collides in a locale.
	KindDroppedRoute DiagnosticKind = "DROPPED_ROUTE"

	// KindMissingParent indicates the parent route of a page is not in the
	// tree. The parent's non-localized path is used as prefix.
	KindMissingParent DiagnosticKind = "MISSING_PARENT"

	// KindInvalidPageFile indicates a page file path without extension.
	KindInvalidPageFile DiagnosticKind = "INVALID_PAGE_FILE"
)

// Diagnostic is a problem found while building a route tree. Diagnostics
// never abort a build.
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind

	// Message is the human-readable description.
	Message string

	// Path is the non-localized path involved.
	Path string

	// Locale is set for locale-specific problems.
	Locale string

	// Files are the page files and label sources involved.
	Files []string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func (d Diagnostic) log(logger *slog.Logger) {
	attrs := []any{"kind", string(d.Kind), "path", d.Path}
	if d.Locale != "" {
		attrs = append(attrs, "locale", d.Locale)
	}
	if len(d.Files) > 0 {
		attrs = append(attrs, "files", d.Files)
	}
	if d.Severity == SeverityError {
		logger.Error(d.Message, attrs...)
		return
	}
	logger.Warn(d.Message, attrs...)
}

// checker applies the registration policies of a tree under construction.
type checker struct {
	tree        *Tree
	logger      *slog.Logger
	nonRoutable map[string]struct{}
}

func newChecker(tree *Tree, logger *slog.Logger, pagesDirs, extensions []string) *checker {
	nonRoutable := make(map[string]struct{})
	for _, p := range NonRoutablePages(pagesDirs, extensions) {
		nonRoutable[p] = struct{}{}
	}
	return &checker{tree: tree, logger: logger, nonRoutable: nonRoutable}
}

func (c *checker) report(d Diagnostic) {
	c.tree.diagnostics = append(c.tree.diagnostics, d)
	d.log(c.logger)
}

// isNonRoutable reports whether pageFile is a special page; slugs defined
// for it are reported.
func (c *checker) isNonRoutable(pageFile, urlPath string, slugFiles []string) bool {
	if _, ok := c.nonRoutable[pageFile]; !ok {
		return false
	}
	if len(slugFiles) > 0 {
		c.report(Diagnostic{
			Severity: SeverityWarning,
			Kind:     KindNonRoutableSlug,
			Message:  fmt.Sprintf("invalid %s found in %s since %s is a non-routable page file", plural("slug", slugFiles), strings.Join(slugFiles, ", "), pageFile),
			Path:     urlPath,
			Files:    append([]string{pageFile}, slugFiles...),
		})
	}
	return true
}

// isDuplicate reports whether urlPath is already registered. Ignored slugs
// are reported.
func (c *checker) isDuplicate(filesystemPath, urlPath string, slugFiles []string) bool {
	existing, ok := c.tree.Lookup(urlPath)
	if !ok {
		return false
	}
	msg := fmt.Sprintf("duplicate page detected: %s and %s both resolve to %s", existing.FilesystemPath(), filesystemPath, urlPath)
	if len(slugFiles) > 0 {
		msg = fmt.Sprintf("the %s found in %s will be ignored since a %s", plural("slug", slugFiles), strings.Join(slugFiles, ", "), msg)
	}
	c.report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindDuplicateRoute,
		Message:  msg,
		Path:     urlPath,
		Files:    append([]string{existing.FilesystemPath(), filesystemPath}, slugFiles...),
	})
	return true
}

// checkDynamic reports slugs defined for a dynamic route.
func (c *checker) checkDynamic(filesystemPath, urlPath string, slugFiles []string) {
	if !IsDynamicPath(urlPath) || len(slugFiles) == 0 {
		return
	}
	c.report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindDynamicSlug,
		Message:  fmt.Sprintf("the %s found in %s will be ignored since %s is a dynamic route", plural("slug", slugFiles), strings.Join(slugFiles, ", "), urlPath),
		Path:     urlPath,
		Files:    append([]string{filesystemPath}, slugFiles...),
	})
}

func (c *checker) collision(filesystemPath, urlPath, locale, localized string, owner *Route) {
	c.report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindLocalizedCollision,
		Message:  fmt.Sprintf("the %s localized path %s of %s is already used by %s; using the non-localized segment", locale, localized, filesystemPath, owner.FilesystemPath()),
		Path:     urlPath,
		Locale:   locale,
		Files:    []string{filesystemPath, owner.FilesystemPath()},
	})
}

func (c *checker) dropped(filesystemPath, urlPath, locale, localized string, owner *Route) {
	c.report(Diagnostic{
		Severity: SeverityError,
		Kind:     KindDroppedRoute,
		Message:  fmt.Sprintf("route %s dropped: its %s path %s is already used by %s", urlPath, locale, localized, owner.FilesystemPath()),
		Path:     urlPath,
		Locale:   locale,
		Files:    []string{filesystemPath, owner.FilesystemPath()},
	})
}

func (c *checker) missingParent(filesystemPath, urlPath, parentPath string) {
	c.report(Diagnostic{
		Severity: SeverityError,
		Kind:     KindMissingParent,
		Message:  fmt.Sprintf("parent route %s of %s not found; using its non-localized path as prefix", parentPath, filesystemPath),
		Path:     urlPath,
		Files:    []string{filesystemPath},
	})
}

func (c *checker) invalidPageFile(pageFile string) {
	c.report(Diagnostic{
		Severity: SeverityError,
		Kind:     KindInvalidPageFile,
		Message:  fmt.Sprintf("invalid page file path %s", pageFile),
		Files:    []string{pageFile},
	})
}

func plural(word string, items []string) string {
	if len(items) > 1 {
		return word + "s"
	}
	return word
}
