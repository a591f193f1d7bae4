package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nnnkkk7/sqlbuddy/pkg/connector"
)

type cmdTestConnection struct {
	global *cmdGlobal
}

func (c *cmdTestConnection) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "test-connection"
	cmd.Short = "Check that the selected profile can be connected to"
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTestConnection) Run(cmd *cobra.Command, _ []string) error {
	name, p, err := c.global.profile()
	if err != nil {
		return err
	}

	if err := connector.NewRegistry(c.global.log).TestConnection(cmd.Context(), p); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Connection to %s (%s) successful\n", name, p.Type)
	return err
}

type cmdProfiles struct {
	global *cmdGlobal
}

func (c *cmdProfiles) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "profiles"
	cmd.Short = "List connection profiles"
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdProfiles) Run(cmd *cobra.Command, _ []string) error {
	conf := c.global.conf

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"NAME", "TYPE", "TARGET", "DEFAULT"})
	for _, name := range conf.ProfileNames() {
		p := conf.Profiles[name]

		target := p.Path
		switch {
		case p.Account != "":
			target = p.Account
		case p.Host != "":
			target = p.Host
		case target == "":
			target = "(memory)"
		}
		if p.Database != "" {
			target += "/" + p.Database
		}

		def := ""
		if name == conf.DefaultProfile {
			def = "*"
		}
		table.Append([]string{name, p.Type, target, def})
	}
	table.Render()
	return nil
}
