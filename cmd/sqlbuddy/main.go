// Package main provides the sqlbuddy command line tool.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
	"github.com/nnnkkk7/sqlbuddy/pkg/connector"
)

type cmdGlobal struct {
	flagConfig  string
	flagProfile string

	conf config.Config
	log  *logrus.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	global := &cmdGlobal{}

	app := &cobra.Command{}
	app.Use = "sqlbuddy"
	app.Short = "Run SQL scripts against configured databases"
	app.Long = `sqlbuddy splits SQL text into statements, runs them one after another
on a single connection and prints every result set, update count and error.`
	app.SilenceUsage = true
	app.PersistentPreRunE = global.preRun

	app.PersistentFlags().StringVar(&global.flagConfig, "config", "", "Path to the config file"+"``")
	app.PersistentFlags().StringVarP(&global.flagProfile, "profile", "p", "", "Connection profile to use"+"``")

	runCmd := cmdRun{global: global}
	app.AddCommand(runCmd.Command())

	highlightCmd := cmdHighlight{global: global}
	app.AddCommand(highlightCmd.Command())

	serveCmd := cmdServe{global: global}
	app.AddCommand(serveCmd.Command())

	testCmd := cmdTestConnection{global: global}
	app.AddCommand(testCmd.Command())

	profilesCmd := cmdProfiles{global: global}
	app.AddCommand(profilesCmd.Command())

	configCmd := cmdConfig{global: global}
	app.AddCommand(configCmd.Command())

	return app
}

func (g *cmdGlobal) preRun(cmd *cobra.Command, _ []string) error {
	// config init must work without a readable config.
	if cmd.Annotations["skipConfig"] == "true" {
		g.conf = config.DefaultConfig()
		g.log = newLogger(cmd.ErrOrStderr(), g.conf.Log)
		return nil
	}

	conf, err := config.Load(g.flagConfig)
	if err != nil {
		return err
	}
	g.conf = conf
	g.log = newLogger(cmd.ErrOrStderr(), conf.Log)
	return nil
}

func (g *cmdGlobal) profile() (string, config.Profile, error) {
	name := g.flagProfile
	if name == "" {
		name = g.conf.DefaultProfile
	}

	p, err := g.conf.Profile(name)
	if err != nil {
		return "", config.Profile{}, err
	}
	return name, p, nil
}

// connect opens the selected profile.
func (g *cmdGlobal) connect(ctx context.Context) (*connection.Manager, error) {
	name, p, err := g.profile()
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{"profile": name, "type": p.Type}).Debug("Connecting")
	return connector.NewRegistry(g.log).Connect(ctx, p)
}

func newLogger(out io.Writer, lc config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(lc.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func closeManager(log logrus.FieldLogger, mgr *connection.Manager) {
	if err := mgr.Close(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}
}

