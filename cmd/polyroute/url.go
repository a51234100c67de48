package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/errors"
)

func urlCmd(g *globals) *cobra.Command {
	var (
		loc    string
		params map[string]string
	)

	cmd := &cobra.Command{
		Use:   "url <path>",
		Short: "Print the localized URL of a non-localized path",
		Long: `Print the localized URL of a non-localized path, substituting dynamic
segment values.

Examples:
  polyroute url /about-us --locale fr-CA
  polyroute url "/shop/[id]?ref=mail" --locale fr-CA --param id=7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := runBuild(cmd, g)
			if err != nil {
				return err
			}

			l := loc
			if l == "" {
				l = result.Locales.ActualDefault()
			}
			actual, ok := result.Locales.Lookup(l)
			if !ok {
				return errors.New("E101").
					WithDetailf("%q is not one of the configured locales.", l).
					WithSuggestion("Use one of the locales in polyroute.json")
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Rules.LocalizedURL(args[0], actual, params))
			return nil
		},
	}

	cmd.Flags().StringVarP(&loc, "locale", "l", "", "Locale (default: the first configured locale)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Dynamic segment value (name=value)")

	return cmd
}
