package connection

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/go-cmp/cmp"
)

// setupTestManager creates a manager over an in-memory DuckDB database.
func setupTestManager(t *testing.T) *Manager {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open DuckDB: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB: %v", err)
		}
	})

	return NewManager(db)
}

func TestManager_TryAcquire_RejectsWhileBusy(t *testing.T) {
	mgr := setupTestManager(t)
	ctx := context.Background()

	first, err := mgr.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}

	if _, err := mgr.TryAcquire(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("second TryAcquire() error = %v, want ErrBusy", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := mgr.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("TryAcquire() after release error = %v", err)
	}
	_ = second.Close()
}

func TestManager_Acquire_SerializesRuns(t *testing.T) {
	mgr := setupTestManager(t)
	ctx := context.Background()

	first, err := mgr.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	acquired := make(chan *Session, 1)
	go func() {
		s, err := mgr.Acquire(ctx)
		if err != nil {
			t.Errorf("blocked Acquire() error = %v", err)
			close(acquired)
			return
		}
		acquired <- s
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire() returned while the first session was still open")
	case <-time.After(50 * time.Millisecond):
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case s := <-acquired:
		if s == nil {
			t.Fatal("second Acquire() failed")
		}
		_ = s.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("second Acquire() did not proceed after release")
	}
}

func TestManager_Acquire_ContextCanceled(t *testing.T) {
	mgr := setupTestManager(t)

	held, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer held.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := mgr.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	mgr := setupTestManager(t)

	s, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	_ = s.Close()

	// A double close must not release exclusivity twice.
	next, err := mgr.TryAcquire(context.Background())
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}
	if _, err := mgr.TryAcquire(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("TryAcquire() error = %v, want ErrBusy", err)
	}
	_ = next.Close()
}

func TestSession_Execute(t *testing.T) {
	mgr := setupTestManager(t)
	ctx := context.Background()

	s, err := mgr.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer s.Close()

	for _, stmt := range []string{
		"CREATE TABLE users (id BIGINT, name VARCHAR)",
	} {
		cur, err := s.Execute(ctx, stmt)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", stmt, err)
		}
		_ = cur.Close()
	}

	t.Run("UpdateCount", func(t *testing.T) {
		cur, err := s.Execute(ctx, "INSERT INTO users VALUES (1, 'Alice'), (2, 'Bob')")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		defer cur.Close()

		if cur.IsRowSet() {
			t.Error("expected insert not to be a row-set")
		}
		count, ok := cur.UpdateCount()
		if !ok || count != 2 {
			t.Errorf("UpdateCount() = %d, %v, want 2, true", count, ok)
		}

		more, err := cur.Advance(ctx)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		if more {
			t.Error("expected no further row-set")
		}
		if _, ok := cur.UpdateCount(); ok {
			t.Error("expected update count to be absent after advancing")
		}
	})

	t.Run("RowSet", func(t *testing.T) {
		cur, err := s.Execute(ctx, "SELECT id, name FROM users ORDER BY id")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		defer cur.Close()

		if !cur.IsRowSet() {
			t.Fatal("expected select to be a row-set")
		}
		if _, ok := cur.UpdateCount(); ok {
			t.Error("expected no update count for a row-set")
		}

		got, err := cur.RowSet(ctx)
		if err != nil {
			t.Fatalf("RowSet() error = %v", err)
		}
		want := &RowSet{
			Columns: []string{"id", "name"},
			Rows: [][]any{
				{int64(1), "Alice"},
				{int64(2), "Bob"},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("RowSet() mismatch (-want +got):\n%s", diff)
		}

		more, err := cur.Advance(ctx)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		if more || cur.IsRowSet() {
			t.Error("expected cursor to be exhausted")
		}
	})

	t.Run("ExecutionError", func(t *testing.T) {
		if _, err := s.Execute(ctx, "SELECT * FROM missing_table"); err == nil {
			t.Error("expected error for missing table")
		}
	})
}
