package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mvlib/internal/importer"
	"mvlib/internal/ledger"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	var noSearch bool

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import music videos from a CSV file",
		Long: "Import reads a CSV of music videos, downloads missing files with\n" +
			"yt-dlp, and writes NFO sidecars recording where each file came from.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			downloader, err := ctx.newDownloader()
			if err != nil {
				return err
			}
			if err := downloader.CheckAvailable(); err != nil {
				return err
			}
			enrichment, err := ctx.newEnrichment()
			if err != nil {
				return err
			}

			return ctx.runPass("import", true, func(runCtx context.Context, logger *slog.Logger, store *ledger.Store) (string, error) {
				opts := []importer.Option{
					importer.WithLogger(logger),
					importer.WithOverwrite(overwrite || cfg.Library.OverwriteExisting),
					importer.WithSearchDisabled(noSearch),
				}
				if enrichment != nil {
					opts = append(opts, importer.WithEnrichment(enrichment))
				}
				if store != nil {
					opts = append(opts, importer.WithRecorder(store))
				}
				imp, err := importer.New(ctx.layout(), downloader, opts...)
				if err != nil {
					return "", err
				}
				stats, err := imp.Run(runCtx, args[0])
				if err != nil {
					return stats.String(), err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Redownload videos that already exist when the row carries a new URL")
	cmd.Flags().BoolVar(&noSearch, "no-search", false, "Do not search for rows without a URL")
	return cmd
}
