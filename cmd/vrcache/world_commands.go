package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vrcache/internal/catalog"
	"vrcache/internal/logging"
	"vrcache/internal/worldid"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <world-id> <new-name>",
		Short: "Rename an archived world and its asset directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := ctx.newManager(logging.NewNop(), nil)
			if err != nil {
				return err
			}
			defer bundle.Close()

			if err := bundle.manager.RenameWorld(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var keepAssets bool

	cmd := &cobra.Command{
		Use:     "remove <world-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an archived world, its asset bundle, and thumbnail",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := ctx.newManager(logging.NewNop(), nil)
			if err != nil {
				return err
			}
			defer bundle.Close()

			if keepAssets {
				if err := bundle.store.Remove(args[0]); err != nil {
					return err
				}
			} else if err := bundle.manager.RemoveWorld(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepAssets, "keep-assets", false, "Remove the record only, leaving files on disk")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var manualName string
	var manualAuthor string
	var manualDescription string

	cmd := &cobra.Command{
		Use:   "import <world-url-or-id> <payload-file>",
		Short: "Archive a payload under an explicit world identifier or URL",
		Long: "Archive a payload under an explicit world identifier or URL. " +
			"Metadata is fetched from the lookup service; pass --name to supply " +
			"it yourself for worlds the service no longer lists.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}
			bundle, err := ctx.newManager(logger, nil)
			if err != nil {
				return err
			}
			defer bundle.Close()

			var rec catalog.WorldRecord
			if manualName != "" {
				id, idErr := worldid.FromURL(args[0])
				if idErr != nil {
					return fmt.Errorf("parse world identifier from %q: %w", args[0], idErr)
				}
				rec, err = bundle.manager.ImportManual(cmd.Context(), args[1], manualName, manualAuthor, manualDescription, id)
			} else {
				rec, err = bundle.manager.ImportWorld(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %q (%s)\n", rec.Name, rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&manualName, "name", "", "World name, skipping the metadata lookup")
	cmd.Flags().StringVar(&manualAuthor, "author", "", "World author (with --name)")
	cmd.Flags().StringVar(&manualDescription, "description", "", "World description (with --name)")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify catalog integrity and prune broken records",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}
			bundle, err := ctx.newManager(logger, nil)
			if err != nil {
				return err
			}
			defer bundle.Close()

			pruned, err := bundle.manager.VerifyIntegrity()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if pruned == 0 {
				fmt.Fprintln(out, "Catalog is consistent")
			} else {
				fmt.Fprintf(out, "Pruned %d broken record(s)\n", pruned)
			}
			return nil
		},
	}
}
