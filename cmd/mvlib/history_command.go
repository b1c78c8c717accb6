package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mvlib/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return errors.New("the run ledger is disabled; enable [ledger] in the configuration")
			}
			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if strings.TrimSpace(runID) != "" {
				attempts, err := store.AttemptsForRun(context.Background(), runID)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					fmt.Fprintf(out, "No attempts recorded for run %s\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(attempts))
				for _, a := range attempts {
					rows = append(rows, []string{
						formatTimestamp(a.CreatedAt),
						a.Action,
						a.Path,
						a.URL,
						a.Detail,
					})
				}
				writeReport(out, []string{"Time", "Action", "Path", "URL", "Detail"}, rows, nil)
				return nil
			}

			runs, err := store.RecentRuns(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.Pass,
					r.Status,
					formatTimestamp(r.StartedAt),
					formatDuration(r.StartedAt, r.FinishedAt),
					r.Summary,
				})
			}
			writeReport(out, []string{"Run", "Pass", "Status", "Started", "Duration", "Summary"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the recorded attempts of one run")
	return cmd
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(time.Second).String()
}
