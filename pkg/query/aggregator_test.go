package query

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDrain(t *testing.T) {
	tests := []struct {
		name    string
		cursor  *fakeCursor
		want    []Outcome
		wantErr bool
	}{
		{
			name: "MixedChain",
			cursor: &fakeCursor{results: []fakeResult{
				countResult(0),
				rowSetResult([]string{"id"}, []any{int64(1)}),
				countResult(3),
			}},
			want: []Outcome{
				UpdateMessage{AffectedCount: 0},
				TableResult{Columns: []string{"id"}, Rows: [][]string{{"1"}}},
				UpdateMessage{AffectedCount: 3},
			},
		},
		{
			name:   "NoResults",
			cursor: &fakeCursor{},
			want:   nil,
		},
		{
			name: "EmptyRowSet",
			cursor: &fakeCursor{results: []fakeResult{
				rowSetResult([]string{"a", "a"}),
			}},
			want: []Outcome{
				TableResult{Columns: []string{"a", "a"}, Rows: [][]string{}},
			},
		},
		{
			name: "NullValues",
			cursor: &fakeCursor{results: []fakeResult{
				rowSetResult([]string{"name", "note"}, []any{[]byte("alice"), nil}),
			}},
			want: []Outcome{
				TableResult{Columns: []string{"name", "note"}, Rows: [][]string{{"alice", "NULL"}}},
			},
		},
		{
			name: "RowSetError",
			cursor: &fakeCursor{
				results:   []fakeResult{rowSetResult([]string{"id"})},
				rowSetErr: errors.New("scan failed"),
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "AdvanceErrorKeepsEarlierOutcomes",
			cursor: &fakeCursor{
				results:    []fakeResult{countResult(2), countResult(5)},
				advanceErr: errors.New("connection reset"),
			},
			want:    []Outcome{UpdateMessage{AffectedCount: 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Drain(context.Background(), tt.cursor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Drain() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Drain() mismatch (-want +got):\n%s", diff)
			}
			if tt.cursor.closed {
				t.Error("Drain() must not close the cursor")
			}
		})
	}
}
