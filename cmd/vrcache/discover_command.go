package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vrcache/internal/catalog"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [cache-dir]",
		Short: "Scan a cache directory and archive every payload found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}
			bundle, err := ctx.newManager(logger, newInteractiveDecider(os.Stdin, cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer bundle.Close()

			root := ""
			if len(args) == 1 {
				root = args[0]
			} else if stored, ok := bundle.store.Scalar(catalog.KeyVRChatCache); ok {
				root = stored
			}
			if root == "" {
				return errors.New("no cache directory given and none configured; pass a path or run `vrcache config set-cache`")
			}

			summary, err := bundle.manager.DiscoverExisting(cmd.Context(), root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %d payload(s): %d archived, %d flagged, %d already known, %d unidentified",
				summary.Scanned, summary.Stored, summary.Flagged, summary.Skipped, summary.Unidentified)
			if summary.Failed > 0 {
				fmt.Fprintf(out, ", %d failed", summary.Failed)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
