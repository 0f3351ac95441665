package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/logging"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigSetExecCommand(ctx))
	configCmd.AddCommand(newConfigSetCacheCommand(ctx))
	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory:      %s\n", cfg.DataDir)
			fmt.Fprintf(out, "Archive directory:   %s\n", cfg.ArchiveDir)
			fmt.Fprintf(out, "Log directory:       %s\n", cfg.LogDir)
			fmt.Fprintf(out, "Catalog:             %s\n", cfg.CatalogPath())
			fmt.Fprintf(out, "API base URL:        %s\n", cfg.APIBaseURL)
			fmt.Fprintf(out, "Download thumbnails: %s\n", yesNo(cfg.DownloadThumbnails))
			fmt.Fprintf(out, "Lookup cache:        %s\n", yesNo(cfg.LookupCacheEnabled))

			if exec, ok := store.Scalar(catalog.KeyVRChatExec); ok {
				fmt.Fprintf(out, "VRChat executable:   %s\n", exec)
			}
			if cache, ok := store.Scalar(catalog.KeyVRChatCache); ok {
				fmt.Fprintf(out, "VRChat cache:        %s\n", cache)
			}
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.WriteFile(target, []byte(config.SampleConfig()), 0o644); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigSetExecCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-exec <path>",
		Short: "Record the game launcher path in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if _, err := os.Stat(abs); err != nil {
				return fmt.Errorf("executable: %w", err)
			}
			if err := store.SetScalar(catalog.KeyVRChatExec, abs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "VRChat executable set to %s\n", abs)
			return nil
		},
	}
}

func newConfigSetCacheCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-cache <directory>",
		Short: "Record the game cache directory to watch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if info, err := os.Stat(abs); err != nil {
				return fmt.Errorf("cache directory: %w", err)
			} else if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", abs)
			}
			if err := store.SetScalar(catalog.KeyVRChatCache, abs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "VRChat cache directory set to %s\n", abs)
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
