// Package connector maps database type tags to drivers and opens connections.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
)

// Params are the connection parameters of one profile.
type Params = config.Profile

// Adapter describes how to reach one kind of database.
type Adapter interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN builds the driver data source name from connection parameters.
	DSN(p Params) (string, error)

	// TestQuery returns a query that yields the single value 1.
	TestQuery() string
}

// ConnectionError reports that a session could not be established.
type ConnectionError struct {
	Type string
	Err  error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s database: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Registry maps database type tags to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	log      logrus.FieldLogger
}

// NewRegistry creates a registry with the built-in adapters registered.
func NewRegistry(log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Registry{
		adapters: make(map[string]Adapter),
		log:      log,
	}
	r.Register(config.DatabaseTypeDuckDB, duckDBAdapter{})
	r.Register(config.DatabaseTypeSQLite, sqliteAdapter{})
	r.Register(config.DatabaseTypeMySQL, mySQLAdapter{})
	r.Register(config.DatabaseTypeSnowflake, snowflakeAdapter{})
	return r
}

// Register adds or replaces the adapter for a database type.
func (r *Registry) Register(dbType string, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[dbType] = a
}

// Lookup returns the adapter registered for a database type.
func (r *Registry) Lookup(dbType string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[dbType]
	return a, ok
}

// Types returns the registered database types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.adapters))
	for t := range r.adapters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Connect opens and verifies a database for the given parameters.
// Every failure is returned as a *ConnectionError.
func (r *Registry) Connect(ctx context.Context, p Params) (*connection.Manager, error) {
	adapter, ok := r.Lookup(p.Type)
	if !ok {
		return nil, &ConnectionError{Type: p.Type, Err: fmt.Errorf("unsupported database type %q", p.Type)}
	}

	dsn, err := adapter.DSN(p)
	if err != nil {
		return nil, &ConnectionError{Type: p.Type, Err: fmt.Errorf("invalid connection parameters: %w", err)}
	}

	db, err := sql.Open(adapter.DriverName(), dsn)
	if err != nil {
		return nil, &ConnectionError{Type: p.Type, Err: err}
	}

	mgr := connection.NewManager(db)
	if err := mgr.Ping(ctx); err != nil {
		_ = mgr.Close()
		return nil, &ConnectionError{Type: p.Type, Err: err}
	}

	r.log.WithFields(logrus.Fields{
		"type":     p.Type,
		"host":     p.Host,
		"database": p.Database,
	}).Debug("Connected to database")

	return mgr, nil
}

// TestConnection connects, runs the adapter's test query and checks that it
// returns 1.
func (r *Registry) TestConnection(ctx context.Context, p Params) error {
	mgr, err := r.Connect(ctx, p)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			r.log.WithError(err).Warn("Failed to close test connection")
		}
	}()

	adapter, _ := r.Lookup(p.Type)
	return Check(ctx, mgr, adapter.TestQuery())
}

// Check runs testQuery on an open connection and checks that it returns 1.
func Check(ctx context.Context, mgr *connection.Manager, testQuery string) error {
	var result int
	if err := mgr.QueryRow(ctx, testQuery).Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("test query returned %d, expected 1", result)
	}
	return nil
}
