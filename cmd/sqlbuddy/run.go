package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nnnkkk7/sqlbuddy/pkg/query"
	"github.com/nnnkkk7/sqlbuddy/pkg/render"
	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

type cmdRun struct {
	global *cmdGlobal

	flagFile   string
	flagFormat string
	flagDryRun bool
}

func (c *cmdRun) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "run [<sql>...]"
	cmd.Short = "Run SQL statements"
	cmd.Long = `Run SQL statements on the selected profile.

The SQL text comes from the arguments, from --file, or from standard input
when neither is given or the only argument is "-". Comments are removed and
the text is split on semicolons. Each statement runs in order; a failing
statement is reported and the remaining statements still run.`
	cmd.Example = `  sqlbuddy run "SELECT 1; SELECT 2"
  sqlbuddy run -f script.sql --format json
  cat script.sql | sqlbuddy run -p warehouse`
	cmd.RunE = c.Run

	cmd.Flags().StringVarP(&c.flagFile, "file", "f", "", "Read SQL from a file"+"``")
	cmd.Flags().StringVar(&c.flagFormat, "format", render.FormatTable, "Output format (table, csv, json or yaml)"+"``")
	cmd.Flags().BoolVar(&c.flagDryRun, "dry-run", false, "Print the statements without running them")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdRun) Run(cmd *cobra.Command, args []string) error {
	if err := render.ValidateFormat(c.flagFormat); err != nil {
		return err
	}

	text, err := c.readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	statements := sqltext.Split(text)

	out := cmd.OutOrStdout()
	if c.flagDryRun {
		for _, stmt := range statements {
			if _, err := fmt.Fprintln(out, stmt+";"); err != nil {
				return err
			}
		}
		return nil
	}

	if _, _, err := c.global.profile(); err != nil {
		return err
	}

	// Nothing to run: no connection is opened.
	if len(statements) == 0 {
		return render.Outcomes(out, []query.Outcome{}, c.flagFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := c.execute(ctx, statements)
	if err != nil {
		return err
	}

	if err := render.Outcomes(out, outcomes, c.flagFormat); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Kind() == query.OutcomeKindError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d statement(s) failed", failed)
	}
	return nil
}

func (c *cmdRun) execute(ctx context.Context, statements []string) ([]query.Outcome, error) {
	log := c.global.log

	mgr, err := c.global.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeManager(log, mgr)

	sess, err := mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Warn("Failed to release connection")
		}
	}()

	return query.NewRunner(log).RunStatements(ctx, sess, statements), nil
}

func (c *cmdRun) readInput(stdin io.Reader, args []string) (string, error) {
	switch {
	case c.flagFile != "" && len(args) > 0:
		return "", fmt.Errorf("--file cannot be combined with SQL arguments")
	case c.flagFile != "":
		data, err := os.ReadFile(c.flagFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", c.flagFile, err)
		}
		return string(data), nil
	case len(args) == 0 || (len(args) == 1 && args[0] == "-"):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}
