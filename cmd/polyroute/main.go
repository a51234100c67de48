// Command polyroute builds localized routes for a file-based pages directory
// and prints, exports or serves the rules an HTTP layer applies.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/config"
	"github.com/vango-dev/polyroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags.
type globals struct {
	dir     string
	debug   bool
	noColor bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "polyroute",
		Short: "Localized URLs for file-based routes",
		Long: `Polyroute builds localized URLs for the pages of a file-based router.

Slugs come from the .properties label sources next to each page:

  pages/about-us.tsx
  pages/about-us.fr-CA.properties   shop.aboutUs.slug = À propos de nous

  /fr-ca/%C3%A0-propos-de-nous  →  /fr-ca/about-us`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.dir, "dir", "C", "", "Project directory (default: nearest directory with "+config.ConfigFileName+")")
	flags.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(g),
		routesCmd(g),
		rulesCmd(g, "rewrites"),
		rulesCmd(g, "redirects"),
		exportCmd(g),
		resolveCmd(g),
		urlCmd(g),
		devCmd(g),
		versionCmd(),
	)

	return rootCmd
}

// load reads, overrides and validates the project configuration.
func (g *globals) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.dir == "" {
		cfg, err = config.LoadFromWorkingDir()
	} else {
		var root string
		root, err = config.FindProjectRoot(g.dir)
		if err == nil {
			cfg, err = config.Load(root)
		}
	}
	if err != nil {
		return nil, err
	}

	if g.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger returns a text logger on stderr, at debug level in debug mode.
func logger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
