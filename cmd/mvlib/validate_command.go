package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mvlib/internal/ledger"
	"mvlib/internal/library"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the library tree for structural problems",
		Long: "Validate scans the library and reports orphan files, missing\n" +
			"artist metadata, unexpected files, and duplicate basenames.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.runPass("validate", false, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				snap, err := library.Scan(cfg.Paths.LibraryDir, cfg.Library.VideoExtension)
				if err != nil {
					return "", err
				}

				var rows [][]string
				for _, rule := range library.DefaultRules() {
					for _, finding := range rule.Check(snap) {
						rows = append(rows, []string{rule.Name(), finding})
					}
				}

				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No problems found")
					return "no problems found", nil
				}
				writeReport(out, []string{"Rule", "Finding"}, rows, nil)
				summary := fmt.Sprintf("%d problems found", len(rows))
				return summary, fmt.Errorf("validation found %d problem(s)", len(rows))
			})
		},
	}
	return cmd
}
