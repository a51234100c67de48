package routes

import (
	"encoding/json"

	"github.com/vango-dev/polyroute/pkg/routepath"
)

// Tree is the set of routes discovered in a pages directory, in discovery
// order (depth first, files before sub-directories).
type Tree struct {
	pagesDir    string
	locales     []string
	routes      []*Route
	byPath      map[string]int
	byLocalized map[string]map[string]int
	diagnostics []Diagnostic
}

func newTree(pagesDir string, locales []string) *Tree {
	t := &Tree{
		pagesDir:    pagesDir,
		locales:     append([]string(nil), locales...),
		byPath:      make(map[string]int),
		byLocalized: make(map[string]map[string]int, len(locales)),
	}
	for _, l := range locales {
		t.byLocalized[l] = make(map[string]int)
	}
	return t
}

// PagesDirectory returns the pages directory the tree was built from.
func (t *Tree) PagesDirectory() string {
	return t.pagesDir
}

// Locales returns the actual locales of the tree.
func (t *Tree) Locales() []string {
	return append([]string(nil), t.locales...)
}

// Routes returns the routes in discovery order.
func (t *Tree) Routes() []*Route {
	return append([]*Route(nil), t.routes...)
}

// Len returns the number of routes.
func (t *Tree) Len() int {
	return len(t.routes)
}

// Lookup returns the route registered for a non-localized path.
func (t *Tree) Lookup(nonLocalizedPath string) (*Route, bool) {
	i, ok := t.byPath[nonLocalizedPath]
	if !ok {
		return nil, false
	}
	return t.routes[i], true
}

// Diagnostics returns the problems recorded while building the tree.
func (t *Tree) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), t.diagnostics...)
}

// Equal reports whether both trees hold the same routes with the same paths.
// Diagnostics are not compared.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.routes) != len(o.routes) {
		return false
	}
	for i := range t.routes {
		if !t.routes[i].equal(o.routes[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (t *Tree) MarshalJSON() ([]byte, error) {
	routes := t.routes
	if routes == nil {
		routes = []*Route{}
	}
	return json.Marshal(routes)
}

// localizedKey folds a localized path for collision checks. Rules are
// matched in lowercase, so paths differing only by case collide.
func localizedKey(p, locale string) string {
	return routepath.Lower(p, locale)
}

// owner returns the route that holds a localized path in locale.
func (t *Tree) owner(locale, localized string) (*Route, bool) {
	i, ok := t.byLocalized[locale][localizedKey(localized, locale)]
	if !ok {
		return nil, false
	}
	return t.routes[i], true
}

func (t *Tree) add(r *Route) {
	i := len(t.routes)
	t.routes = append(t.routes, r)
	t.byPath[r.nonLocalizedPath] = i
	for _, lp := range r.localizedPaths {
		t.byLocalized[lp.Locale][localizedKey(lp.Path, lp.Locale)] = i
	}
}
