package query

import (
	"context"
	"errors"
	"sync"

	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
)

// fakeResult is one entry of a scripted cursor: a row-set, an update count,
// or neither (which ends the chain).
type fakeResult struct {
	rows     *connection.RowSet
	count    int64
	hasCount bool
}

func rowSetResult(columns []string, rows ...[]any) fakeResult {
	return fakeResult{rows: &connection.RowSet{Columns: columns, Rows: rows}}
}

func countResult(n int64) fakeResult {
	return fakeResult{count: n, hasCount: true}
}

// fakeCursor replays a scripted chain of results.
type fakeCursor struct {
	results    []fakeResult
	pos        int
	rowSetErr  error
	advanceErr error
	closeErr   error
	closed     bool
}

func (c *fakeCursor) current() (fakeResult, bool) {
	if c.pos >= len(c.results) {
		return fakeResult{}, false
	}
	return c.results[c.pos], true
}

func (c *fakeCursor) IsRowSet() bool {
	r, ok := c.current()
	return ok && r.rows != nil
}

func (c *fakeCursor) RowSet(_ context.Context) (*connection.RowSet, error) {
	if c.rowSetErr != nil {
		return nil, c.rowSetErr
	}
	r, ok := c.current()
	if !ok || r.rows == nil {
		return nil, errors.New("no current row-set")
	}
	return r.rows, nil
}

func (c *fakeCursor) UpdateCount() (int64, bool) {
	r, ok := c.current()
	if !ok || !r.hasCount {
		return -1, false
	}
	return r.count, true
}

func (c *fakeCursor) Advance(_ context.Context) (bool, error) {
	if c.advanceErr != nil {
		return false, c.advanceErr
	}
	c.pos++
	return c.IsRowSet(), nil
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return c.closeErr
}

// fakeExecutor serves scripted cursors or errors per statement and records
// what was executed.
type fakeExecutor struct {
	mu       sync.Mutex
	cursors  map[string]*fakeCursor
	errs     map[string]error
	executed []string
	closed   bool
	onExec   func(sql string)
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		cursors: make(map[string]*fakeCursor),
		errs:    make(map[string]error),
	}
}

func (e *fakeExecutor) Execute(_ context.Context, sql string) (connection.Cursor, error) {
	e.mu.Lock()
	e.executed = append(e.executed, sql)
	onExec := e.onExec
	e.mu.Unlock()

	if onExec != nil {
		onExec(sql)
	}
	if err, ok := e.errs[sql]; ok {
		return nil, err
	}
	if cur, ok := e.cursors[sql]; ok {
		return cur, nil
	}
	return &fakeCursor{}, nil
}

func (e *fakeExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeExecutor) Executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}
