package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vrcache/internal/catalog"
	"vrcache/internal/logging"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <world-id>",
		Short: "Show details for an archived world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}

			rec, ok := store.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrNotFound, args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "World ID:    %s\n", rec.ID)
			fmt.Fprintf(out, "Name:        %s\n", rec.Name)
			fmt.Fprintf(out, "Author:      %s\n", rec.Author)
			if rec.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", rec.Description)
			}
			fmt.Fprintf(out, "Flagged:     %s\n", flaggedLabel(rec))

			assetPath := catalog.AssetPath(cfg.ArchiveDir, rec)
			fmt.Fprintf(out, "Asset:       %s", assetPath)
			if info, err := os.Stat(assetPath); err == nil {
				fmt.Fprintf(out, " (%d bytes)", info.Size())
			} else {
				fmt.Fprint(out, " (missing)")
			}
			fmt.Fprintln(out)

			if rec.ThumbnailPath != "" {
				fmt.Fprintf(out, "Thumbnail:   %s\n", rec.ThumbnailPath)
			}
			return nil
		},
	}
}
