// Package connection manages database sessions and exposes executed statements
// as result cursors.
package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

// ErrBusy is returned by TryAcquire while another run owns the session.
var ErrBusy = errors.New("connection is busy with another run")

// Manager hands out exclusive database sessions.
//
// Only one Session exists at a time:
//   - Acquire waits for the in-flight run to release its session
//   - TryAcquire fails fast with ErrBusy instead of waiting
//   - Each Session pins a dedicated *sql.Conn so statements of one run share
//     server-side session state
type Manager struct {
	db  *sql.DB
	sem chan struct{}
}

// NewManager creates a new connection manager for the given database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:  db,
		sem: make(chan struct{}, 1),
	}
}

// Acquire blocks until no other session is active and returns a new one.
// It gives up when ctx is done.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return m.open(ctx)
}

// TryAcquire returns a new session, or ErrBusy if one is already active.
func (m *Manager) TryAcquire(ctx context.Context) (*Session, error) {
	select {
	case m.sem <- struct{}{}:
	default:
		return nil, ErrBusy
	}
	return m.open(ctx)
}

func (m *Manager) open(ctx context.Context) (*Session, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		<-m.sem
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return &Session{
		conn:       conn,
		classifier: sqltext.DefaultClassifier,
		release:    func() { <-m.sem },
	}, nil
}

// Ping verifies the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// QueryRow executes a query that is expected to return at most one row.
// It bypasses session ownership and is meant for connection checks.
func (m *Manager) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Session is exclusive access to one database connection for the duration
// of a run. It must be closed to let the next run proceed.
type Session struct {
	conn       *sql.Conn
	classifier *sqltext.Classifier
	release    func()
	closeOnce  sync.Once
	closeErr   error
}

// Execute runs a single statement and returns a cursor over its results.
// Statements that produce rows are issued as queries, everything else as an
// exec whose affected row count becomes the cursor's update count.
func (s *Session) Execute(ctx context.Context, query string) (Cursor, error) {
	if s.classifier.ProducesRows(query) {
		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		return newRowsCursor(rows), nil
	}

	result, err := s.conn.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return newResultCursor(result), nil
}

// Close returns the connection to the pool and releases exclusivity.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
		s.release()
	})
	return s.closeErr
}
