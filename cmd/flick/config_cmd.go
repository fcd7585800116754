package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/npratt/flick/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage flick configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write the default settings as a commented TOML file.

By default the file is written to .flick/config.toml in the current
directory. Use --global to write the user config instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(config.ProjectConfigDir, config.ProjectConfigFile)
			if global, _ := cmd.Flags().GetBool(FlagGlobal); global {
				path = config.DefaultConfigPath()
			}
			force, _ := cmd.Flags().GetBool(FlagForce)

			if err := config.WriteTemplate(path, config.Default(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool(FlagForce, false, "Overwrite an existing config file")
	initCmd.Flags().Bool(FlagGlobal, false, "Write the user config under $XDG_CONFIG_HOME")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
