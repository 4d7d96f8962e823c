package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// ConnectionError creates an error for failed PostgreSQL connections.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>
  3. Review connection settings in
     <em>~/.config/gnbackbone/config.yaml</em>`

	vars := []any{host, port, host, user}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// SQLiteOpenError creates an error for a SQLite file that cannot be
// opened.
func SQLiteOpenError(path string, err error) error {
	msg := `Cannot open SQLite database <em>%s</em>

<em>Possible causes:</em>
  - The directory does not exist
  - No write permission for the file
  - The file is not a SQLite database`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to open sqlite database %s: %w", path, err),
	}
}

// UnsupportedDriverError creates an error for unknown database drivers.
func UnsupportedDriverError(driver string) error {
	msg := `Database driver <em>%s</em> is not supported

Use <em>sqlite</em> or <em>postgres</em>.`

	vars := []any{driver}

	return &gn.Error{
		Code: errcode.DBUnsupportedDriverError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported database driver '%s'", driver),
	}
}

// NotConnectedError creates an error for operations attempted before
// Connect.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError creates an error for a failed check of database
// tables.
func TableCheckError(err error) error {
	msg := "Cannot verify database state"

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// TableExistsCheckError creates an error for a failed check of a
// table.
func TableExistsCheckError(table string, err error) error {
	msg := "Cannot check if table <em>%s</em> exists"

	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to check table %s: %w", table, err),
	}
}

// EmptyDatabaseError creates an error for a database without backbone
// tables.
func EmptyDatabaseError(database string) error {
	msg := `Database <em>%s</em> has no backbone tables

<em>How to fix:</em>
  1. Create the schema:
     <em>gnbackbone create</em>
  2. Build the backbone:
     <em>gnbackbone build taxa.csv</em>`

	vars := []any{database}

	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("database %s has no tables", database),
	}
}

// QueryTablesError creates an error for a failed query of table names.
func QueryTablesError(err error) error {
	msg := "Cannot get the list of database tables"

	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to query tables: %w", err),
	}
}

// ScanTableError creates an error for a failed scan of a table name.
func ScanTableError(err error) error {
	msg := "Cannot read the list of database tables"

	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to scan table name: %w", err),
	}
}

// DropTableError creates an error for a table that cannot be dropped.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"

	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
