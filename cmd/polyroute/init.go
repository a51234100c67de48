package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/errors"
)

func initCmd(g *globals) *cobra.Command {
	var (
		applicationID string
		locales       []string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a polyroute.json",
		Long: `Create a polyroute.json in the project directory.

Examples:
  polyroute init --app shop --locales en-US,fr-CA
  polyroute init -C ./web --app shop --locales en-US,fr-CA --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.dir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}
			path := filepath.Join(dir, config.ConfigFileName)

			if config.Exists(dir) && !force {
				return errors.New("E140").
					WithDetail(path + " already exists.").
					WithSuggestion("Use --force to overwrite it")
			}

			cfg := config.New()
			cfg.ApplicationID = applicationID
			cfg.Locales = locales
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			w := cmd.ErrOrStderr()
			success(w, "Created %s", path)
			if err := cfg.Validate(); err != nil {
				// Written anyway, so the file can be fixed by hand.
				warn(w, "%s", errors.FromError(err, "E103").FormatCompact())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&applicationID, "app", "", "Application identifier (first segment of message keys)")
	cmd.Flags().StringSliceVar(&locales, "locales", nil, "Actual locales, default first (e.g. en-US,fr-CA)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing polyroute.json")
	cmd.MarkFlagRequired("app")
	cmd.MarkFlagRequired("locales")

	return cmd
}
