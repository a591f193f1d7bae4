package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nnnkkk7/sqlbuddy/pkg/highlight"
)

type cmdHighlight struct {
	global *cmdGlobal

	flagFile      string
	flagStyle     string
	flagFormatter string
	flagSpans     bool
}

func (c *cmdHighlight) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "highlight [<sql>...]"
	cmd.Short = "Print SQL with comments muted"
	cmd.Long = `Print SQL text with syntax colors. Comments are detected by the same
scanner the statement splitter uses, so what is shown muted is exactly what a
run ignores.`
	cmd.RunE = c.Run

	cmd.Flags().StringVarP(&c.flagFile, "file", "f", "", "Read SQL from a file"+"``")
	cmd.Flags().StringVar(&c.flagStyle, "style", highlight.DefaultStyle, "Chroma style name"+"``")
	cmd.Flags().StringVar(&c.flagFormatter, "formatter", highlight.DefaultFormatter, "Chroma formatter name (terminal, terminal256, terminal16m, html, noop)"+"``")
	cmd.Flags().BoolVar(&c.flagSpans, "spans", false, "Print the styled spans instead of colored text")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdHighlight) Run(cmd *cobra.Command, args []string) error {
	var text string
	switch {
	case c.flagFile != "":
		data, err := os.ReadFile(c.flagFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.flagFile, err)
		}
		text = string(data)
	case len(args) == 0 || (len(args) == 1 && args[0] == "-"):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		text = string(data)
	default:
		text = strings.Join(args, " ")
	}

	out := cmd.OutOrStdout()
	if c.flagSpans {
		for _, span := range highlight.Highlight(text) {
			if _, err := fmt.Fprintf(out, "%d\t%d\t%s\t%q\n", span.Start, span.End, span.Style, span.Text); err != nil {
				return err
			}
		}
		return nil
	}

	return highlight.NewTerminal(c.flagStyle, c.flagFormatter).Write(out, text)
}
