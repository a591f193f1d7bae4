package query

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewRunner(log)
}

func TestRunner_RunStatements(t *testing.T) {
	tests := []struct {
		name       string
		statements []string
		setup      func(e *fakeExecutor)
		want       []Outcome
	}{
		{
			name:       "SingleStatementMixedResults",
			statements: []string{"CALL refresh()"},
			setup: func(e *fakeExecutor) {
				e.cursors["CALL refresh()"] = &fakeCursor{results: []fakeResult{
					countResult(0),
					rowSetResult([]string{"id"}, []any{int64(1)}),
					countResult(3),
				}}
			},
			want: []Outcome{
				UpdateMessage{AffectedCount: 0},
				TableResult{Columns: []string{"id"}, Rows: [][]string{{"1"}}},
				UpdateMessage{AffectedCount: 3},
			},
		},
		{
			name:       "ErrorThenSuccess",
			statements: []string{"SELEC 1", "SELECT 2"},
			setup: func(e *fakeExecutor) {
				e.errs["SELEC 1"] = errors.New(`syntax error at or near "SELEC"`)
				e.cursors["SELECT 2"] = &fakeCursor{results: []fakeResult{
					rowSetResult([]string{"2"}, []any{int64(2)}),
				}}
			},
			want: []Outcome{
				ErrorMessage{StatementIndex: 0, Text: `syntax error at or near "SELEC"`},
				TableResult{Columns: []string{"2"}, Rows: [][]string{{"2"}}},
			},
		},
		{
			name:       "PartialOutcomesPrecedeError",
			statements: []string{"CALL multi()", "DELETE FROM t"},
			setup: func(e *fakeExecutor) {
				e.cursors["CALL multi()"] = &fakeCursor{
					results:    []fakeResult{countResult(4), countResult(1)},
					advanceErr: errors.New("lost connection"),
				}
				e.cursors["DELETE FROM t"] = &fakeCursor{results: []fakeResult{countResult(7)}}
			},
			want: []Outcome{
				UpdateMessage{AffectedCount: 4},
				ErrorMessage{StatementIndex: 0, Text: "lost connection"},
				UpdateMessage{AffectedCount: 7},
			},
		},
		{
			name:       "CloseErrorIsReported",
			statements: []string{"UPDATE t SET a = 1"},
			setup: func(e *fakeExecutor) {
				e.cursors["UPDATE t SET a = 1"] = &fakeCursor{
					results:  []fakeResult{countResult(2)},
					closeErr: errors.New("close failed"),
				}
			},
			want: []Outcome{
				UpdateMessage{AffectedCount: 2},
				ErrorMessage{StatementIndex: 0, Text: "close failed"},
			},
		},
		{
			name:       "StatementWithoutResults",
			statements: []string{"SET search_path = public"},
			want:       []Outcome{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newFakeExecutor()
			if tt.setup != nil {
				tt.setup(exec)
			}

			got := newTestRunner(t).RunStatements(context.Background(), exec, tt.statements)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RunStatements() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.statements, exec.Executed()); diff != "" {
				t.Errorf("executed statements mismatch (-want +got):\n%s", diff)
			}
			for sql, cur := range exec.cursors {
				if !cur.closed {
					t.Errorf("cursor for %q was not closed", sql)
				}
			}
		})
	}
}

func TestRunner_Run(t *testing.T) {
	exec := newFakeExecutor()
	exec.cursors["SELECT 1"] = &fakeCursor{results: []fakeResult{
		rowSetResult([]string{"1"}, []any{int64(1)}),
	}}
	exec.cursors["SELECT 2"] = &fakeCursor{results: []fakeResult{
		rowSetResult([]string{"2"}, []any{int64(2)}),
	}}

	got := newTestRunner(t).Run(context.Background(), exec, "SELECT 1; -- first\n/* second; */ SELECT 2;")

	want := []Outcome{
		TableResult{Columns: []string{"1"}, Rows: [][]string{{"1"}}},
		TableResult{Columns: []string{"2"}, Rows: [][]string{{"2"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_EmptyInputSkipsExecutor(t *testing.T) {
	inputs := []string{"", "   \n\t", "-- only a comment", "/* block */ ; ;", "/* unterminated"}

	for _, input := range inputs {
		got := newTestRunner(t).Run(context.Background(), nil, input)
		if got == nil || len(got) != 0 {
			t.Errorf("Run(%q) = %#v, want empty list", input, got)
		}
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	exec := newFakeExecutor()
	exec.cursors["INSERT INTO t VALUES (1)"] = &fakeCursor{results: []fakeResult{countResult(1)}}
	exec.onExec = func(sql string) {
		if sql == "INSERT INTO t VALUES (1)" {
			cancel()
		}
	}

	got := newTestRunner(t).RunStatements(ctx, exec, []string{
		"INSERT INTO t VALUES (1)",
		"INSERT INTO t VALUES (2)",
		"INSERT INTO t VALUES (3)",
	})

	want := []Outcome{
		UpdateMessage{AffectedCount: 1},
		ErrorMessage{StatementIndex: 1, Text: context.Canceled.Error()},
		ErrorMessage{StatementIndex: 2, Text: context.Canceled.Error()},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunStatements() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"INSERT INTO t VALUES (1)"}, exec.Executed()); diff != "" {
		t.Errorf("executed statements mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_LogsStatementType(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	exec := newFakeExecutor()
	exec.cursors["SELECT 1"] = &fakeCursor{results: []fakeResult{rowSetResult([]string{"a"}, []any{int64(1)})}}
	exec.cursors["INSERT INTO t VALUES (1)"] = &fakeCursor{results: []fakeResult{countResult(1)}}

	NewRunner(log).RunStatements(context.Background(), exec, []string{"SELECT 1", "INSERT INTO t VALUES (1)"})

	var got []string
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Running statement" {
			got = append(got, entry.Data["statement_type"].(string))
		}
	}
	if diff := cmp.Diff([]string{"query", "dml"}, got); diff != "" {
		t.Errorf("statement types mismatch (-want +got):\n%s", diff)
	}
}
