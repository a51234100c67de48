package routes

import "encoding/json"

// LocalizedPath is the URL path of a route in one locale.
type LocalizedPath struct {
	Locale string `json:"locale" yaml:"locale"`
	Path   string `json:"urlPath" yaml:"urlPath"`
}

// Route is a page with its non-localized and localized URL paths.
// Routes are immutable once built.
type Route struct {
	filesystemPath   string
	nonLocalizedPath string
	localizedPaths   []LocalizedPath
}

// FilesystemPath returns the slash-separated path of the page file or
// directory, relative to the project root.
func (r *Route) FilesystemPath() string {
	return r.filesystemPath
}

// NonLocalizedPath returns the canonical URL path (e.g. "/about-us").
func (r *Route) NonLocalizedPath() string {
	return r.nonLocalizedPath
}

// LocalizedPath returns the URL path of the route in locale, or "" when the
// locale is not configured.
func (r *Route) LocalizedPath(locale string) string {
	for _, lp := range r.localizedPaths {
		if lp.Locale == locale {
			return lp.Path
		}
	}
	return ""
}

// LocalizedPaths returns one entry per actual locale, in locale order.
func (r *Route) LocalizedPaths() []LocalizedPath {
	return append([]LocalizedPath(nil), r.localizedPaths...)
}

// IsDynamic reports whether the last segment of the route is a parameter.
func (r *Route) IsDynamic() bool {
	return IsDynamicPath(r.nonLocalizedPath)
}

func (r *Route) equal(o *Route) bool {
	if r.filesystemPath != o.filesystemPath || r.nonLocalizedPath != o.nonLocalizedPath {
		return false
	}
	if len(r.localizedPaths) != len(o.localizedPaths) {
		return false
	}
	for i := range r.localizedPaths {
		if r.localizedPaths[i] != o.localizedPaths[i] {
			return false
		}
	}
	return true
}

type routeJSON struct {
	FilesystemPath   string          `json:"filesystemPath"`
	NonLocalizedPath string          `json:"nonLocalizedUrlPath"`
	LocalizedPaths   []LocalizedPath `json:"localizedUrlPaths"`
}

// MarshalJSON implements json.Marshaler.
func (r *Route) MarshalJSON() ([]byte, error) {
	return json.Marshal(routeJSON{
		FilesystemPath:   r.filesystemPath,
		NonLocalizedPath: r.nonLocalizedPath,
		LocalizedPaths:   r.localizedPaths,
	})
}
