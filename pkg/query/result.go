// Package query runs batches of SQL statements and collects their outcomes.
package query

import (
	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
)

// OutcomeKind identifies the variant of an Outcome.
type OutcomeKind string

const (
	OutcomeKindTable  OutcomeKind = "table"
	OutcomeKindUpdate OutcomeKind = "update"
	OutcomeKindError  OutcomeKind = "error"
)

// Outcome is one displayable result of a run: a TableResult, an
// UpdateMessage or an ErrorMessage.
type Outcome interface {
	Kind() OutcomeKind
	outcome()
}

// TableResult is a materialized row-set with display-formatted values.
// Column names may repeat.
type TableResult struct {
	Columns []string
	Rows    [][]string
}

// UpdateMessage reports the number of rows affected by a statement.
type UpdateMessage struct {
	AffectedCount int64
}

// ErrorMessage reports the failure of the statement at StatementIndex
// (0-based, in batch order).
type ErrorMessage struct {
	StatementIndex int
	Text           string
}

func (TableResult) Kind() OutcomeKind   { return OutcomeKindTable }
func (UpdateMessage) Kind() OutcomeKind { return OutcomeKindUpdate }
func (ErrorMessage) Kind() OutcomeKind  { return OutcomeKindError }

func (TableResult) outcome()   {}
func (UpdateMessage) outcome() {}
func (ErrorMessage) outcome()  {}

func newTableResult(set *connection.RowSet) TableResult {
	return TableResult{
		Columns: set.Columns,
		Rows:    FormatRows(set.Rows),
	}
}

func newErrorMessage(index int, err error) ErrorMessage {
	return ErrorMessage{StatementIndex: index, Text: err.Error()}
}
