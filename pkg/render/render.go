// Package render prints run outcomes for terminals and scripts.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/nnnkkk7/sqlbuddy/pkg/query"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON, FormatYAML}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q", format)
}

// Label returns the display label of the outcome at position i (0-based).
func Label(i int) string {
	return "Result " + strconv.Itoa(i+1)
}

// UpdateText is the message shown for an update count.
func UpdateText(count int64) string {
	return "Total records updated: " + strconv.FormatInt(count, 10)
}

// ErrorText is the message shown for a failed statement.
func ErrorText(e query.ErrorMessage) string {
	return fmt.Sprintf("Error in statement %d: %s", e.StatementIndex+1, e.Text)
}

// Outcomes writes outcomes to w in the given format.
func Outcomes(w io.Writer, outcomes []query.Outcome, format string) error {
	switch format {
	case FormatTable, "":
		return Text(w, outcomes)
	case FormatCSV:
		return CSV(w, outcomes)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Records(outcomes))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(Records(outcomes)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ValidateFormat(format)
	}
}

// Text writes every outcome under its label. Tables are drawn with borders,
// update counts and errors as one line of text.
func Text(w io.Writer, outcomes []query.Outcome) error {
	for i, o := range outcomes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, Label(i)); err != nil {
			return err
		}

		switch v := o.(type) {
		case query.TableResult:
			table := tablewriter.NewWriter(w)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetAutoFormatHeaders(false)
			table.SetHeader(v.Columns)
			table.AppendBulk(v.Rows)
			table.Render()
		case query.UpdateMessage:
			if _, err := fmt.Fprintln(w, UpdateText(v.AffectedCount)); err != nil {
				return err
			}
		case query.ErrorMessage:
			if _, err := fmt.Fprintln(w, ErrorText(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// CSV writes each table as a header line followed by its rows. Update counts
// and errors become single-field records.
func CSV(w io.Writer, outcomes []query.Outcome) error {
	cw := csv.NewWriter(w)
	for i, o := range outcomes {
		if err := cw.Write([]string{Label(i)}); err != nil {
			return err
		}

		switch v := o.(type) {
		case query.TableResult:
			if err := cw.Write(v.Columns); err != nil {
				return err
			}
			if err := cw.WriteAll(v.Rows); err != nil {
				return err
			}
		case query.UpdateMessage:
			if err := cw.Write([]string{UpdateText(v.AffectedCount)}); err != nil {
				return err
			}
		case query.ErrorMessage:
			if err := cw.Write([]string{ErrorText(v)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record is the serialized form of one outcome.
type Record struct {
	Label          string     `json:"label" yaml:"label"`
	Kind           string     `json:"kind" yaml:"kind"`
	Columns        []string   `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows           [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
	AffectedCount  *int64     `json:"affectedCount,omitempty" yaml:"affected_count,omitempty"`
	StatementIndex *int       `json:"statementIndex,omitempty" yaml:"statement_index,omitempty"`
	Error          string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Records converts outcomes to their serialized form.
func Records(outcomes []query.Outcome) []Record {
	records := make([]Record, 0, len(outcomes))
	for i, o := range outcomes {
		rec := Record{Label: Label(i), Kind: string(o.Kind())}
		switch v := o.(type) {
		case query.TableResult:
			rec.Columns = v.Columns
			rec.Rows = v.Rows
		case query.UpdateMessage:
			count := v.AffectedCount
			rec.AffectedCount = &count
		case query.ErrorMessage:
			index := v.StatementIndex
			rec.StatementIndex = &index
			rec.Error = v.Text
		}
		records = append(records, rec)
	}
	return records
}
