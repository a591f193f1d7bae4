package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
)

type cmdConfig struct {
	global *cmdGlobal
}

func (c *cmdConfig) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "config"
	cmd.Short = "Manage the configuration file"
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error { return cmd.Help() }

	initCmd := cmdConfigInit{global: c.global}
	cmd.AddCommand(initCmd.Command())

	showCmd := cmdConfigShow{global: c.global}
	cmd.AddCommand(showCmd.Command())

	return cmd
}

type cmdConfigInit struct {
	global *cmdGlobal

	flagForce bool
}

func (c *cmdConfigInit) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "init"
	cmd.Short = "Write the default configuration"
	cmd.Args = cobra.NoArgs
	cmd.Annotations = map[string]string{"skipConfig": "true"}
	cmd.RunE = c.Run

	cmd.Flags().BoolVar(&c.flagForce, "force", false, "Overwrite an existing file")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdConfigInit) Run(cmd *cobra.Command, _ []string) error {
	path, err := config.WriteDefault(c.global.flagConfig, c.flagForce)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return err
}

type cmdConfigShow struct {
	global *cmdGlobal
}

func (c *cmdConfigShow) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "show"
	cmd.Short = "Print the effective configuration"
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic. Passwords are masked.
func (c *cmdConfigShow) Run(cmd *cobra.Command, _ []string) error {
	conf := c.global.conf
	profiles := make(map[string]config.Profile, len(conf.Profiles))
	for name, p := range conf.Profiles {
		if p.Password != "" {
			p.Password = "********"
		}
		profiles[name] = p
	}
	conf.Profiles = profiles

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(conf); err != nil {
		return err
	}
	return enc.Close()
}
