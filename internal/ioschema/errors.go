package ioschema

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// NotConnectedError creates an error for when schema
// operation is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

<em>Possible causes:</em>
  - Connection pool not initialized
  - Database configuration issue

<em>How to fix:</em>
  1. Ensure database operator is connected
  2. Check database configuration`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// CreateSchemaError creates an error for schema
// creation failures.
func CreateSchemaError(err error) error {
	msg := `Cannot create database schema

<em>Possible causes:</em>
  - Insufficient database permissions
  - Tables already exist

<em>How to fix:</em>
  1. Check database user has CREATE permissions
  2. Run <em>gnbackbone create --force</em> to start from scratch`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to create schema: %w", err),
	}
}

// MigrateSchemaError creates an error for schema
// migration failures.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate database schema

<em>Possible causes:</em>
  - Incompatible schema changes
  - Insufficient database permissions

<em>How to fix:</em>
  1. Backup the database
  2. Recreate it with <em>gnbackbone create --force</em>`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to migrate schema: %w", err),
	}
}

// CollationError creates an error for collation
// setting failures.
func CollationError(table, column string, err error) error {
	msg := "Cannot set collation on <em>%s.%s</em>"

	vars := []any{table, column}

	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"failed to set collation on %s.%s: %w",
			table, column, err),
	}
}

// SchemaVersionError creates an error for a missing or malformed
// schema version.
func SchemaVersionError(version string, err error) error {
	msg := `Cannot determine the schema version of the database (<em>%s</em>)

<em>How to fix:</em>
  Run <em>gnbackbone migrate</em> or <em>gnbackbone create</em>`

	vars := []any{version}

	return &gn.Error{
		Code: errcode.SchemaVersionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bad schema version '%s': %w", version, err),
	}
}

// SchemaVersionTooOldError creates an error for a database created by
// an old version of gnbackbone.
func SchemaVersionTooOldError(version, minVersion string) error {
	msg := `Database schema <em>%s</em> is older than <em>%s</em>

<em>How to fix:</em>
  Run <em>gnbackbone migrate</em>`

	vars := []any{version, minVersion}

	return &gn.Error{
		Code: errcode.SchemaVersionTooOldError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("schema version %s is older than %s",
			version, minVersion),
	}
}

var (
	errNoVersion  = errors.New("schema_versions table is empty")
	errNotVersion = errors.New("not a semantic version")
)
