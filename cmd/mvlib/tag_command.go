package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mvlib/internal/ledger"
	"mvlib/internal/tagger"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags across artist catalogs",
	}

	tagCmd.AddCommand(newTagActionCommand(ctx, "add", "Add a tag to every record of the given artists", tagger.ActionAdd))
	tagCmd.AddCommand(newTagActionCommand(ctx, "remove", "Remove a tag from every record of the given artists", tagger.ActionRemove))

	return tagCmd
}

func newTagActionCommand(ctx *commandContext, verb, short string, action tagger.Action) *cobra.Command {
	var artistsFile string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <tag> [artist...]", verb),
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			tag := args[0]
			artists := args[1:]
			if strings.TrimSpace(artistsFile) != "" {
				fromFile, err := tagger.LoadArtists(artistsFile)
				if err != nil {
					return err
				}
				artists = append(artists, fromFile...)
			}
			if len(artists) == 0 {
				return errors.New("no artists given; pass names as arguments or use --artists-file")
			}

			return ctx.runPass("tag-"+verb, true, func(runCtx context.Context, logger *slog.Logger, _ *ledger.Store) (string, error) {
				tg := tagger.New(ctx.layout(),
					tagger.WithLogger(logger),
					tagger.WithDryRun(dryRun),
				)
				stats, err := tg.Run(runCtx, artists, tag, action)
				if err != nil {
					return stats.String(), err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
				return stats.String(), nil
			})
		},
	}

	cmd.Flags().StringVarP(&artistsFile, "artists-file", "f", "", "File with one artist name per line")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without rewriting files")
	return cmd
}
