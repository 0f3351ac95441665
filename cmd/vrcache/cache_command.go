package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vrcache/internal/lookupcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the persistent metadata lookup cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) openLookupCache() (*lookupcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	cache, err := lookupcache.Open(cfg.LookupCachePath())
	if err != nil {
		return nil, fmt.Errorf("open lookup cache: %w", err)
	}
	return cache, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached metadata lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openLookupCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			entries, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Lookup cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.WorldID,
					entry.Name,
					entry.Author,
					entry.CachedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"WORLD ID", "NAME", "AUTHOR", "CACHED"}, rows))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached metadata lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openLookupCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached lookup(s)\n", removed)
			return nil
		},
	}
}
