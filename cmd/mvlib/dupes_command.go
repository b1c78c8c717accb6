package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mvlib/internal/dupefinder"
	"mvlib/internal/ledger"
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find likely duplicate videos by fuzzy artist/title match",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Duplicates.Threshold
			}

			return ctx.runPass("dupes", false, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				finder, err := dupefinder.New(threshold, dupefinder.WithLogger(logger))
				if err != nil {
					return "", err
				}
				matches, err := finder.Run(runCtx, cfg.Paths.LibraryDir, cfg.Library.VideoExtension)
				if err != nil {
					return "", err
				}

				out := cmd.OutOrStdout()
				if len(matches) == 0 {
					fmt.Fprintln(out, "No likely duplicates found")
					return "no duplicates found", nil
				}
				rows := make([][]string, 0, len(matches))
				for _, m := range matches {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f", m.Score),
						fmt.Sprintf("%s - %s", m.A.Artist, m.A.Title),
						m.A.Path,
						m.B.Path,
					})
				}
				writeReport(out, []string{"Score", "Track", "First", "Second"}, rows, []columnAlignment{alignRight})
				return fmt.Sprintf("%d duplicate pairs", len(matches)), nil
			})
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Similarity threshold between 0 and 1 (defaults to the configured value)")
	return cmd
}
