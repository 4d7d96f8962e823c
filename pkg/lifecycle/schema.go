// Package lifecycle defines contracts of database lifecycle steps.
package lifecycle

import (
	"context"
)

// SchemaManager defines the interface for database schema management.
// Schema management is idempotent, it is safe to run it several times.
type SchemaManager interface {
	// Create creates backbone tables and records the schema version.
	Create(ctx context.Context) error

	// Migrate adds missing tables, columns and indexes and records the
	// schema version.
	Migrate(ctx context.Context) error

	// CheckVersion verifies that the database schema is not older than
	// the oldest supported version.
	CheckVersion(ctx context.Context) (string, error)
}
