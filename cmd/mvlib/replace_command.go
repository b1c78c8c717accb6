package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mvlib/internal/ledger"
	"mvlib/internal/library"
	"mvlib/internal/replacer"
)

func newReplaceCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "replace <nfo-file-or-directory>...",
		Short: "Replace videos with freshly searched sources",
		Long: "Replace searches for a new source for each NFO, skips URLs the\n" +
			"sidecar has already seen, and overwrites the video on success.",
		Args: cobra.MinimumNArgs(1),
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
			paths, err := expandNfoArgs(args, cfg.Library.VideoExtension)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no NFO files found under %s", strings.Join(args, ", "))
			}

			return ctx.runPass("replace", true, func(runCtx context.Context, logger *slog.Logger, store *ledger.Store) (string, error) {
				opts := []replacer.Option{
					replacer.WithLogger(logger),
					replacer.WithDryRun(dryRun),
				}
				if store != nil {
					opts = append(opts, replacer.WithRecorder(store))
				}
				rep, err := replacer.New(downloader, cfg.Library.VideoExtension, opts...)
				if err != nil {
					return "", err
				}
				stats, err := rep.Run(runCtx, paths)
				if err != nil {
					return stats.String(), err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be replaced without downloading")
	return cmd
}

// expandNfoArgs accepts NFO paths and directories; directories expand
// to every sidecar beneath them, artist.nfo files excluded.
func expandNfoArgs(args []string, extension string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspect path %q: %w", arg, err)
		}
		if info.IsDir() {
			snap, err := library.Scan(arg, extension)
			if err != nil {
				return nil, err
			}
			paths = append(paths, snap.NfoFiles...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}
