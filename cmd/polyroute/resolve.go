package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"text/tabwriter"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/middleware"
	"github.com/vango-dev/polyroute/pkg/negotiate"
)

type resolveView struct {
	Path        string `json:"path" yaml:"path"`
	Status      int    `json:"status" yaml:"status"`
	Redirect    string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Rewrite     string `json:"rewrite,omitempty" yaml:"rewrite,omitempty"`
	Locale      string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	SetCookie   string `json:"setCookie,omitempty" yaml:"setCookie,omitempty"`
	ClearCookie bool   `json:"clearCookie,omitempty" yaml:"clearCookie,omitempty"`
}

func resolveCmd(g *globals) *cobra.Command {
	var (
		target         string
		acceptLanguage string
		cookie         string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show how a request is redirected, rewritten and localized",
		Long: `Run a request through the redirect, rewrite and locale detection
middlewares and print the outcome.

Examples:
  polyroute resolve --path /fr-ca/%C3%A0-propos-de-nous
  polyroute resolve --path / --accept-language "fr;q=0.9, en;q=0.8"
  polyroute resolve --path / --cookie fr-CA`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, result, err := runBuild(cmd, g)
			if err != nil {
				return err
			}
			if _, err := url.ParseRequestURI(target); err != nil {
				return errors.New("E140").WithDetailf("Invalid request path %q.", target).Wrap(err)
			}

			cookies := cfg.CookieSettings()
			view := resolveView{Path: target}

			r := chi.NewRouter()
			r.Use(
				middleware.Redirects(middleware.Static(result.Rules)),
				middleware.Rewrites(middleware.Static(result.Rules)),
				middleware.LocaleDetection(negotiate.New(result.Locales, logger(cfg)), cookies),
			)
			r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
				if original, ok := middleware.OriginalPath(req.Context()); ok && original != req.URL.Path {
					view.Rewrite = req.URL.Path
				}
				if res, ok := middleware.ResolutionFromContext(req.Context()); ok {
					view.Locale = res.Locale
					view.Source = string(res.Source)
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, target, nil)
			if acceptLanguage != "" {
				req.Header.Set("Accept-Language", acceptLanguage)
			}
			if cookie != "" {
				req.AddCookie(&http.Cookie{Name: cookies.Name, Value: cookie})
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			resp := rec.Result()
			view.Status = resp.StatusCode
			view.Redirect = resp.Header.Get("Location")
			for _, c := range resp.Cookies() {
				if c.Name != cookies.Name {
					continue
				}
				if c.MaxAge < 0 {
					view.ClearCookie = true
				} else {
					view.SetCookie = c.Value
				}
			}

			if format != formatTable {
				return encode(cmd.OutOrStdout(), format, view)
			}
			return printResolve(cmd, view)
		},
	}

	cmd.Flags().StringVarP(&target, "path", "p", "/", "Request path, with an optional query")
	cmd.Flags().StringVarP(&acceptLanguage, "accept-language", "l", "", "Accept-Language header")
	cmd.Flags().StringVar(&cookie, "cookie", "", "Locale cookie value")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table, json, yaml)")

	return cmd
}

func printResolve(cmd *cobra.Command, v resolveView) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Path:\t%s\n", v.Path)
	fmt.Fprintf(tw, "Status:\t%d %s\n", v.Status, http.StatusText(v.Status))
	if v.Redirect != "" {
		fmt.Fprintf(tw, "Redirect:\t%s\n", v.Redirect)
		return tw.Flush()
	}
	if v.Rewrite != "" {
		fmt.Fprintf(tw, "Rewrite:\t%s\n", v.Rewrite)
	}
	fmt.Fprintf(tw, "Locale:\t%s (%s)\n", v.Locale, v.Source)
	switch {
	case v.ClearCookie:
		fmt.Fprintf(tw, "Cookie:\tcleared\n")
	case v.SetCookie != "":
		fmt.Fprintf(tw, "Cookie:\tset to %s\n", v.SetCookie)
	}
	return tw.Flush()
}
