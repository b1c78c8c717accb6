package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mvlib/internal/cleaner"
	"mvlib/internal/ledger"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Deduplicate source histories across the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.runPass("clean", true, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				cl := cleaner.New(
					cleaner.WithLogger(logger),
					cleaner.WithDryRun(dryRun),
				)
				stats, err := cl.Run(runCtx, cfg.Paths.LibraryDir, cfg.Library.VideoExtension)
				if err != nil {
					return stats.String(), err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without rewriting files")
	return cmd
}
