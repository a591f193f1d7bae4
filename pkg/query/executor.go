package query

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

// Executor executes one SQL statement and exposes its results as a cursor.
// *connection.Session implements it.
type Executor interface {
	Execute(ctx context.Context, sql string) (connection.Cursor, error)
}

// Runner executes a batch of statements in order against one Executor.
type Runner struct {
	log logrus.FieldLogger
}

// NewRunner creates a new batch runner.
func NewRunner(log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{log: log}
}

// Run splits text into statements and runs them. See RunStatements.
func (r *Runner) Run(ctx context.Context, exec Executor, text string) []Outcome {
	return r.RunStatements(ctx, exec, sqltext.Split(text))
}

// RunStatements executes every statement in order and returns the outcomes
// of all of them, statement by statement.
//
// A failing statement contributes an ErrorMessage after whatever it produced
// before failing, and execution moves on to the next one. Once ctx is done,
// each remaining statement is recorded as an ErrorMessage without being
// executed. An empty batch never touches exec.
func (r *Runner) RunStatements(ctx context.Context, exec Executor, statements []string) []Outcome {
	outcomes := make([]Outcome, 0, len(statements))
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, newErrorMessage(i, err))
			continue
		}
		outcomes = append(outcomes, r.runStatement(ctx, exec, i, stmt)...)
	}

	r.log.WithFields(logrus.Fields{
		"statements": len(statements),
		"outcomes":   len(outcomes),
	}).Debug("Batch finished")
	return outcomes
}

func (r *Runner) runStatement(ctx context.Context, exec Executor, index int, stmt string) (outcomes []Outcome) {
	log := r.log.WithFields(logrus.Fields{
		"statement":      index,
		"statement_type": sqltext.Classify(stmt).String(),
	})
	log.Debug("Running statement")

	cur, err := exec.Execute(ctx, stmt)
	if err != nil {
		log.WithError(err).Debug("Statement failed")
		return []Outcome{newErrorMessage(index, err)}
	}

	failed := false
	defer func() {
		if err := cur.Close(); err != nil && !failed {
			log.WithError(err).Debug("Failed to close cursor")
			outcomes = append(outcomes, newErrorMessage(index, err))
		}
	}()

	outcomes, err = Drain(ctx, cur)
	if err != nil {
		failed = true
		log.WithError(err).Debug("Failed to read statement results")
		outcomes = append(outcomes, newErrorMessage(index, err))
	}
	return outcomes
}
