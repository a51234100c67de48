package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/internal/publish"
)

func exportCmd(g *globals) *cobra.Command {
	var (
		output    string
		format    string
		toS3      bool
		cacheCtrl string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rules manifest",
		Long: `Export the manifest an HTTP host loads: URL locale prefixes, rewrites and
redirects.

Without flags the manifest is written to publish.file, or to stdout when
no file is configured.

Examples:
  polyroute export
  polyroute export -o .polyroute/manifest.json
  polyroute export --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, result, err := runBuild(cmd, g)
			if err != nil {
				return err
			}
			m := result.Rules.Manifest()

			var publishers []publish.Publisher
			if output == "" {
				output = cfg.Publish.File
			}
			if output != "" {
				publishers = append(publishers, publish.File{Path: output})
			}
			if toS3 {
				if cfg.Publish.Bucket == "" {
					return errors.New("E103").
						WithDetail("--publish requires publish.bucket and publish.key.").
						WithSuggestion("Set publish.bucket in polyroute.json or POLYROUTE_PUBLISH_BUCKET")
				}
				p, err := publish.NewS3(cmd.Context(), publish.S3Config{
					Bucket:       cfg.Publish.Bucket,
					Key:          cfg.Publish.Key,
					Region:       cfg.Publish.Region,
					CacheControl: cacheCtrl,
				})
				if err != nil {
					return err
				}
				publishers = append(publishers, p)
			}

			if len(publishers) == 0 {
				if format == formatJSON {
					return m.Encode(cmd.OutOrStdout())
				}
				return encode(cmd.OutOrStdout(), format, m)
			}

			stderr := cmd.ErrOrStderr()
			for _, p := range publishers {
				res, err := p.Publish(cmd.Context(), m)
				if err != nil {
					return err
				}
				success(stderr, "Published %s (%s)", res.Location, humanize.Bytes(uint64(res.Size)))
			}
			info(stderr, "%d rewrites, %d redirects for %d routes", len(m.Rewrites), len(m.Redirects), result.Tree.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Manifest file (default from polyroute.json)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Stdout format (json, yaml)")
	cmd.Flags().BoolVar(&toS3, "publish", false, "Upload the manifest to publish.bucket/publish.key")
	cmd.Flags().StringVar(&cacheCtrl, "cache-control", "", "Cache-Control of the uploaded object (default: no-cache)")

	return cmd
}
