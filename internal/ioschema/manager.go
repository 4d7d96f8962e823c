// Package ioschema implements SchemaManager for SQLite and PostgreSQL.
// PostgreSQL schema is managed by GORM AutoMigrate, SQLite schema is
// created from DDL generated out of the model tags.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/gnbackbone/internal/iodb"
	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/gnames/gnbackbone/pkg/db"
	"github.com/gnames/gnbackbone/pkg/lifecycle"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the lifecycle.SchemaManager interface.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the database schema. For PostgreSQL it also sets "C"
// collation on name columns.
func (m *manager) Create(ctx context.Context) error {
	if m.operator.DB() == nil {
		return NotConnectedError()
	}

	var err error
	switch m.operator.Driver() {
	case iodb.DriverPostgres:
		if err = m.gormMigrate(); err != nil {
			return CreateSchemaError(err)
		}
		if err = m.setCollation(ctx); err != nil {
			return err
		}
	default:
		if err = m.execDDL(ctx, schema.AllDDL()); err != nil {
			return CreateSchemaError(err)
		}
	}

	if err = m.setVersion(ctx, "initial schema"); err != nil {
		return CreateSchemaError(err)
	}
	slog.Info("Created database schema",
		"driver", m.operator.Driver(), "version", config.SchemaVersion)
	return nil
}

// Migrate brings the schema to the current version. SQLite gets
// missing tables only.
func (m *manager) Migrate(ctx context.Context) error {
	if m.operator.DB() == nil {
		return NotConnectedError()
	}

	switch m.operator.Driver() {
	case iodb.DriverPostgres:
		if err := m.gormMigrate(); err != nil {
			return MigrateSchemaError(err)
		}
	default:
		for _, v := range schema.Generators() {
			exists, err := m.operator.TableExists(ctx, v.TableName())
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			ddl := append([]string{v.TableDDL()}, v.IndexDDL()...)
			if err = m.execDDL(ctx, ddl); err != nil {
				return MigrateSchemaError(err)
			}
			slog.Info("Created missing table", "table", v.TableName())
		}
	}

	if err := m.setVersion(ctx, "migration"); err != nil {
		return MigrateSchemaError(err)
	}
	return nil
}

// CheckVersion returns the newest schema version recorded in the
// database.
func (m *manager) CheckVersion(ctx context.Context) (string, error) {
	sqlDB := m.operator.DB()
	if sqlDB == nil {
		return "", NotConnectedError()
	}

	rows, err := sqlDB.QueryContext(ctx, "SELECT version FROM schema_versions")
	if err != nil {
		return "", SchemaVersionError("", err)
	}
	defer rows.Close()

	var res string
	for rows.Next() {
		var version string
		if err = rows.Scan(&version); err != nil {
			return "", SchemaVersionError("", err)
		}
		if !gnlib.IsVersion(version) {
			return "", SchemaVersionError(version, errNotVersion)
		}
		if res == "" || gnlib.CmpVersion(version, res) > 0 {
			res = version
		}
	}
	if err = rows.Err(); err != nil {
		return "", SchemaVersionError("", err)
	}

	if res == "" {
		return "", SchemaVersionError(res, errNoVersion)
	}
	if gnlib.CmpVersion(res, config.MinVersionSchema) < 0 {
		return "", SchemaVersionTooOldError(res, config.MinVersionSchema)
	}
	return res, nil
}

func (m *manager) gormMigrate() error {
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: m.operator.DB()}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return GORMConnectionError(err)
	}
	return schema.Migrate(gormDB)
}

func (m *manager) execDDL(ctx context.Context, ddl []string) error {
	tx, err := m.operator.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, v := range ddl {
		if _, err = tx.ExecContext(ctx, v); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (m *manager) setVersion(ctx context.Context, description string) error {
	q := iodb.Rebind(m.operator.Driver(), `
		INSERT INTO schema_versions (version, description)
		VALUES (?, ?)
		ON CONFLICT (version) DO NOTHING`)
	_, err := m.operator.DB().ExecContext(ctx, q,
		config.SchemaVersion, description)
	return err
}

// setCollation sets "C" collation on name columns of PostgreSQL
// tables. It makes sorting and comparison of scientific names
// byte-wise.
func (m *manager) setCollation(ctx context.Context) error {
	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"nodes", "name", 255},
		{"species", "canonical_name", 255},
		{"synonyms", "name", 255},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := formatCollationSQL(qStr, col.table,
			col.column, col.varchar)
		if _, err := m.operator.DB().ExecContext(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
