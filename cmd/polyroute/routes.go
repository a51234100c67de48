package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/build"
	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/pkg/routes"
)

type routeView struct {
	File      string                 `json:"file" yaml:"file"`
	Path      string                 `json:"path" yaml:"path"`
	Localized []routes.LocalizedPath `json:"localized" yaml:"localized"`
}

// runBuild loads the project and builds its routes.
func runBuild(cmd *cobra.Command, g *globals) (*config.Config, *build.Result, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	result, err := build.New(cfg, build.Options{Logger: logger(cfg)}).Build(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}

func routesCmd(g *globals) *cobra.Command {
	var (
		format string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the localized routes",
		Long: `Print every route with its filesystem path, non-localized URL path and
localized URL path per locale. Diagnostics are logged on stderr.

Examples:
  polyroute routes
  polyroute routes --json
  polyroute routes --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				format = formatJSON
			}
			_, result, err := runBuild(cmd, g)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format != formatTable {
				views := make([]routeView, 0, result.Tree.Len())
				for _, r := range result.Tree.Routes() {
					views = append(views, routeView{
						File:      r.FilesystemPath(),
						Path:      r.NonLocalizedPath(),
						Localized: r.LocalizedPaths(),
					})
				}
				return encode(w, format, views)
			}

			locales := result.Locales.Actual()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "FILE\tPATH\t%s\n", strings.ToUpper(strings.Join(locales, "\t")))
			for _, r := range result.Tree.Routes() {
				cells := make([]string, len(locales))
				for i, l := range locales {
					cells[i] = r.LocalizedPath(l)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.FilesystemPath(), r.NonLocalizedPath(), strings.Join(cells, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if n := len(result.Diagnostics); n > 0 {
				warn(cmd.ErrOrStderr(), "%d diagnostics, see the log above", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Shorthand for --format json")

	return cmd
}

// rulesCmd prints the compiled rewrites or redirects.
func rulesCmd(g *globals, kind string) *cobra.Command {
	format := formatJSON

	cmd := &cobra.Command{
		Use:   kind,
		Short: "Print the compiled " + kind,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := runBuild(cmd, g)
			if err != nil {
				return err
			}
			m := result.Rules.Manifest()
			if kind == "rewrites" {
				return encode(cmd.OutOrStdout(), format, m.Rewrites)
			}
			return encode(cmd.OutOrStdout(), format, m.Redirects)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", format, "Output format (json, yaml)")

	return cmd
}
