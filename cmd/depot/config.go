// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/depotkit/depot/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `depot config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the depot configuration",
		Long: `Inspect and initialize the depot configuration.

Configuration is read from --config, the platform config directory
(` + "`$XDG_CONFIG_HOME/depot/config.cue`" + ` on Linux) or ./config.cue, in that
order. DEPOT_* environment variables override file values.`,
	}

	cmd.AddCommand(
		newConfigShowCommand(app),
		newConfigInitCommand(app),
		newConfigPathCommand(app),
	)
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Print the effective configuration with passwords masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			out, err := config.Export(cfg.Redacted(), config.Format(format))
			if err != nil {
				return app.fail(err)
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format (cue, yaml, toml)")
	return cmd
}

func newConfigInitCommand(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Write a default config.cue into the config directory. An existing file is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", PathStyle.Render("config"), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to write config.cue into (default is the config directory)")
	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.loadConfig(cmd.Context()); err != nil {
				return app.fail(err)
			}
			if p := config.SourcePath(app.Config); p != "" {
				fmt.Fprintln(app.stdout, p)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n",
				filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt),
				SubtitleStyle.Render("(not found, defaults apply)"))
			return nil
		},
	}
}
