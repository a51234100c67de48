// Package build runs the polyroute pipeline for a project: it loads the
// locale set from the configuration, resolves localized slugs from the label
// sources, builds the route tree and compiles the URL rules.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{Logger: logger})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built %d routes in %s\n", result.Tree.Len(), result.Duration)
//	result.Rules.Manifest().Encode(os.Stdout)
//
// Per-route problems never fail a build; they are logged and collected in
// Result.Diagnostics.
package build
