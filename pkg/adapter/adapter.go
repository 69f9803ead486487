// Package adapter defines the storage-engine boundary: a small interface
// over database/sql that the mapping engine talks to, plus a registry of
// concrete engine implementations.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ephyslab/synapdb/pkg/schema"
)

// Config holds the connection endpoint for a storage engine. The mapping
// engine requires nothing else; configuration file formats are a caller
// concern.
type Config struct {
	// Type selects the registered adapter (e.g. "postgres", "sqlite").
	Type string

	// Path is the file path for file-based engines. ":memory:" selects an
	// in-memory database.
	Path string

	// Host and Port locate a network engine.
	Host string
	Port int

	// Database is the database name.
	Database string

	// Username and Password authenticate against a network engine.
	Username string
	Password string

	// Options carries driver-specific settings (e.g. sslmode).
	Options map[string]string
}

// Adapter is a connected storage engine. Isolation and conflict resolution
// are delegated entirely to the engine; the mapping layer adds no locking.
type Adapter interface {
	// Connect establishes the process-wide connection pool.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the pool.
	Close() error

	// Handle exposes the underlying pool for transaction scoping.
	Handle() *sql.DB

	// Dialect identifies the physical type vocabulary of the engine.
	Dialect() schema.Dialect

	// Placeholder renders the n-th (1-based) bind placeholder.
	Placeholder(n int) string
}

// BaseSQLAdapter provides the common database/sql plumbing. Concrete
// adapters embed it and implement Connect, Dialect, and Placeholder.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Handle returns the underlying connection pool.
func (b *BaseSQLAdapter) Handle() *sql.DB {
	return b.DB
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected reports whether Connect has succeeded.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Exec executes a statement that returns no rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}
