package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/webglsl/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect webglslc configuration",
		Long: `Inspect webglslc configuration.

Settings are read from webglsl.yaml in the working directory or in
$XDG_CONFIG_HOME/webglsl, then overridden by WEBGLSL_* environment
variables (rewrite.instancing is WEBGLSL_REWRITE_INSTANCING).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := config.Render(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), subtitleStyle.Render("(no config file; using defaults)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.cfgPath)
			return nil
		},
	})
	return cfgCmd
}
