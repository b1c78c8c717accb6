package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mvlib/internal/converter"
	"mvlib/internal/ledger"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var backup bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite NFO sidecars into the canonical format",
		Long: "Convert decodes every sidecar, legacy shapes included, and\n" +
			"re-encodes it canonically. Files already canonical are untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.runPass("convert", true, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				conv := converter.New(
					converter.WithLogger(logger),
					converter.WithBackup(backup),
					converter.WithDryRun(dryRun),
				)
				stats, err := conv.Run(runCtx, cfg.Paths.LibraryDir, cfg.Library.VideoExtension)
				if err != nil {
					return stats.String(), err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "Keep a .bak copy of each rewritten file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without rewriting files")
	return cmd
}
