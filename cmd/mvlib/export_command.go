package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mvlib/internal/exporter"
	"mvlib/internal/ledger"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export library metadata to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			target := strings.TrimSpace(outputPath)
			if target != "" {
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create export file %q: %w", target, err)
				}
				defer f.Close()
				out = f
			}

			return ctx.runPass("export", false, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				exp := exporter.New(exporter.WithLogger(logger))
				stats, err := exp.Run(runCtx, cfg.Paths.LibraryDir, cfg.Library.VideoExtension, out)
				if err != nil {
					return stats.String(), err
				}
				if target != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (wrote %s)\n", stats.String(), target)
				}
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write CSV to this file instead of stdout")
	return cmd
}
