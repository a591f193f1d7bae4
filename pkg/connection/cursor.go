package connection

import (
	"context"
	"database/sql"
	"fmt"
)

// Cursor walks the chain of results produced by one executed statement.
// A statement may yield several row-sets and update counts, interleaved.
type Cursor interface {
	// IsRowSet reports whether the current result is a row-set.
	IsRowSet() bool

	// RowSet materializes the current row-set in full.
	RowSet(ctx context.Context) (*RowSet, error)

	// UpdateCount returns the update count of the current result, if any.
	UpdateCount() (int64, bool)

	// Advance moves to the next result and reports whether it is a row-set.
	Advance(ctx context.Context) (bool, error)

	// Close releases server-side resources held by the cursor.
	Close() error
}

// RowSet is a fully materialized tabular result.
// Column names may repeat.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// rowsCursor exposes the result sets of *sql.Rows. Row-sets never carry an
// update count.
type rowsCursor struct {
	rows *sql.Rows
	done bool
}

func newRowsCursor(rows *sql.Rows) *rowsCursor {
	return &rowsCursor{rows: rows}
}

func (c *rowsCursor) IsRowSet() bool {
	return !c.done
}

func (c *rowsCursor) RowSet(ctx context.Context) (*RowSet, error) {
	if c.done {
		return nil, fmt.Errorf("no current row-set")
	}

	columns, err := c.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	set := &RowSet{Columns: columns}
	for c.rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := c.rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		set.Rows = append(set.Rows, values)
	}

	if err := c.rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return set, nil
}

func (c *rowsCursor) UpdateCount() (int64, bool) {
	return -1, false
}

func (c *rowsCursor) Advance(ctx context.Context) (bool, error) {
	if c.done {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if c.rows.NextResultSet() {
		return true, nil
	}

	c.done = true
	if err := c.rows.Err(); err != nil {
		return false, fmt.Errorf("failed to advance result set: %w", err)
	}
	return false, nil
}

func (c *rowsCursor) Close() error {
	return c.rows.Close()
}

// resultCursor exposes an exec result as a single update count.
type resultCursor struct {
	count    int64
	hasCount bool
}

func newResultCursor(result sql.Result) *resultCursor {
	count, err := result.RowsAffected()
	if err != nil {
		// Drivers that cannot report affected rows yield no update count.
		return &resultCursor{}
	}
	return &resultCursor{count: count, hasCount: true}
}

func (c *resultCursor) IsRowSet() bool {
	return false
}

func (c *resultCursor) RowSet(_ context.Context) (*RowSet, error) {
	return nil, fmt.Errorf("statement did not produce a row-set")
}

func (c *resultCursor) UpdateCount() (int64, bool) {
	if !c.hasCount {
		return -1, false
	}
	return c.count, true
}

func (c *resultCursor) Advance(_ context.Context) (bool, error) {
	c.hasCount = false
	return false, nil
}

func (c *resultCursor) Close() error {
	return nil
}
