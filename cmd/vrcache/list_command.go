package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"vrcache/internal/catalog"
	"vrcache/internal/logging"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var showAmbiguousOnly bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}

			worlds := store.Worlds()
			if showAmbiguousOnly {
				filtered := worlds[:0]
				for _, rec := range worlds {
					if rec.Ambiguous {
						filtered = append(filtered, rec)
					}
				}
				worlds = filtered
			}
			sortByName(worlds)

			out := cmd.OutOrStdout()
			if len(worlds) == 0 {
				fmt.Fprintln(out, "No worlds archived")
				return nil
			}

			if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
				for _, rec := range worlds {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", rec.ID, rec.Name, rec.Author, flaggedLabel(rec))
				}
				return nil
			}

			rows := make([][]string, 0, len(worlds))
			for _, rec := range worlds {
				rows = append(rows, []string{rec.ID, rec.Name, rec.Author, flaggedLabel(rec)})
			}
			fmt.Fprintln(out, renderTable([]string{"WORLD ID", "NAME", "AUTHOR", "STATUS"}, rows))
			fmt.Fprintf(out, "%d world(s) archived\n", len(worlds))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAmbiguousOnly, "ambiguous", false, "Show only worlds flagged for review")
	cmd.Flags().BoolVar(&plain, "plain", false, "Force tab-separated output")
	return cmd
}

// sortByName orders records by display name with locale-aware collation so
// names in any script sort sensibly, falling back to identifier order for
// identical names.
func sortByName(worlds []catalog.WorldRecord) {
	collator := collate.New(language.Und, collate.Loose)
	sort.SliceStable(worlds, func(i, j int) bool {
		if cmp := collator.CompareString(worlds[i].Name, worlds[j].Name); cmp != 0 {
			return cmp < 0
		}
		return worlds[i].ID < worlds[j].ID
	})
}

func flaggedLabel(rec catalog.WorldRecord) string {
	if rec.Ambiguous {
		return "flagged"
	}
	return "ok"
}
