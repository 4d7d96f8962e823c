// Package db defines the contract of database connections used by
// schema management and the SQL taxonomy store.
package db

import (
	"context"
	"database/sql"

	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines basic database management operations. It hides the
// difference between SQLite and PostgreSQL connections and exposes a
// database/sql handle for both.
type Operator interface {
	// Connect opens the database described by the configuration.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection.
	Close() error

	// Driver returns "sqlite" or "postgres".
	Driver() string

	// DB returns the database/sql handle of the connection.
	DB() *sql.DB

	// Pool returns the pgxpool.Pool of a PostgreSQL connection, nil for
	// SQLite.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables.
	// Used to determine if schema creation should prompt for confirmation.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables of the database.
	DropAllTables(ctx context.Context) error
}
