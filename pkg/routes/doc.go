// Package routes discovers the pages of an application from its filesystem
// layout and gives each page one URL path per locale.
//
// # File Structure Convention
//
// Pages live in the first existing pages directory ("pages" or "src/pages"):
//
//	pages/
//	├── index.tsx                    → homepage, not localized
//	├── about-us.tsx                 → /about-us
//	├── about-us.fr-CA.properties    → slug label for fr-CA
//	├── shop/                        → /shop (implicit, no index file)
//	│   ├── index.fr-CA.properties   → slug label of /shop for fr-CA
//	│   └── [id].tsx                 → /shop/[id] (dynamic, never localized)
//	└── api/                         → skipped
//
// A page's localized path is its parent's localized path followed by the
// page's slug, or by its non-localized segment when no slug is available.
//
//	fsys := os.DirFS(projectDir)
//	resolver := messages.NewResolver(fsys, "shop", logger)
//	tree, err := routes.NewBuilder(fsys, []string{"en-US", "fr-CA"}, resolver).Build()
//	if err != nil {
//	    return err
//	}
//	r, _ := tree.Lookup("/about-us")
//	r.LocalizedPath("fr-CA") // "/à-propos-de-nous"
//
// Problems found while building (duplicate pages, localized path
// collisions, slugs that will be ignored) never abort the build; they are
// recorded as Diagnostics on the tree and logged.
package routes
