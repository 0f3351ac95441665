package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vrcache/internal/daemon"
	"vrcache/internal/notifications"
)

func printEvent(out io.Writer, event notifications.Event) {
	switch event.Kind {
	case notifications.EventWorldArchived:
		label := "Archived"
		if event.Record.Ambiguous {
			label = "Archived (flagged for review)"
		}
		fmt.Fprintf(out, "%s: %s (%s)\n", label, event.Record.Name, event.Record.ID)
	case notifications.EventWorldRemoved:
		fmt.Fprintf(out, "Removed: %s (%s)\n", event.Record.Name, event.Record.ID)
	case notifications.EventWorldRenamed:
		fmt.Fprintf(out, "Renamed: %s (%s)\n", event.Record.Name, event.Record.ID)
	case notifications.EventStatus:
		fmt.Fprintf(out, "Status: %s\n", event.Status)
	}
}

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var foreground bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the game cache and archive new worlds as they load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(foreground)
			if err != nil {
				return err
			}

			// The daemon never prompts: unresolved candidate sets are
			// stored flagged for later review.
			bundle, err := ctx.newManager(logger, nil)
			if err != nil {
				return err
			}
			defer bundle.Close()

			d, err := daemon.New(cfg, bundle.manager, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "vrcache daemon running; press Ctrl-C to stop")

			events, cancel := bundle.manager.Bus().Subscribe()
			defer cancel()
			for {
				select {
				case <-runCtx.Done():
					d.Stop()
					return nil
				case event := <-events:
					printEvent(out, event)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&foreground, "foreground", true, "Log to the console in addition to the log file")
	return cmd
}
