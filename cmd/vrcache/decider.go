package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"vrcache/internal/identify"
)

// newInteractiveDecider prompts the operator on stdin to pick between
// ambiguous candidates. It returns nil when stdin is not a terminal, which
// makes ingestion fall back to storing every candidate flagged.
func newInteractiveDecider(in io.Reader, out io.Writer) identify.Decider {
	if f, ok := in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		return nil
	}

	reader := bufio.NewReader(in)
	return identify.DeciderFunc(func(ctx context.Context, candidates []identify.Candidate) (int, error) {
		fmt.Fprintln(out, "Multiple worlds matched this payload:")
		for i, candidate := range candidates {
			name := "(unknown)"
			author := ""
			if candidate.World != nil {
				name = candidate.World.Name
				author = candidate.World.AuthorName
			}
			fmt.Fprintf(out, "  [%d] %s by %s (%s)\n", i+1, name, author, candidate.ID)
		}
		fmt.Fprintf(out, "Choose 1-%d, or press enter to store all flagged: ", len(candidates))

		line, err := reader.ReadString('\n')
		if err != nil {
			return -1, identify.ErrDeclined
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return -1, identify.ErrDeclined
		}
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > len(candidates) {
			fmt.Fprintln(out, "Invalid choice; storing all candidates flagged")
			return -1, identify.ErrDeclined
		}
		return choice - 1, nil
	})
}
