// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pkgdep/pkgdep/internal/config"
	"github.com/pkgdep/pkgdep/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `pkgdep config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pkgdep configuration",
		Long: `Manage pkgdep configuration.

Configuration is stored in:
  - Linux: ~/.config/pkgdep/config.cue
  - macOS: ~/Library/Application Support/pkgdep/config.cue
  - Windows: %APPDATA%\pkgdep\config.cue

PKGDEP_* environment variables override the file, e.g.
PKGDEP_REPOSITORY_ROOT or PKGDEP_LOG_LEVEL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var dir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, written, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return issue.WrapWithContext(err, "create config file", dir)
			}
			if !written {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Config file already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created config file:"), path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&dir, "dir", "", "directory to create config.cue in (default is the config directory)")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Long: `Show the configuration file in use. When no file is found, show where
'pkgdep config init' would create one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := app.Config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			if loaded.Path != "" {
				fmt.Fprintln(app.stdout, loaded.Path)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return issue.WrapWithOperation(err, "locate config directory")
			}
			fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("No config file, defaults in use. Create one at:"),
				filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	return cfgCmd
}
