// Package iodb implements database connections for SQLite (modernc)
// and PostgreSQL (pgxpool). This is an impure I/O package that
// implements contracts defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/gnames/gnbackbone/pkg/db"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// operator implements db.Operator for both supported drivers.
type operator struct {
	driver string
	name   string
	pool   *pgxpool.Pool
	db     *sql.DB
}

// NewOperator creates a new database operator (without connecting).
func NewOperator() db.Operator {
	return &operator{}
}

// Connect opens a SQLite file or a PostgreSQL connection pool
// according to cfg.Driver.
func (o *operator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	switch cfg.Driver {
	case DriverPostgres:
		return o.connectPostgres(ctx, cfg)
	case DriverSQLite:
		return o.connectSQLite(ctx, cfg)
	default:
		return UnsupportedDriverError(cfg.Driver)
	}
}

func (o *operator) connectPostgres(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	dsn := PostgresDSN(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 0
	poolConfig.MaxConnIdleTime = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	o.driver = DriverPostgres
	o.name = cfg.Database
	o.pool = pool
	o.db = stdlib.OpenDBFromPool(pool)
	slog.Info("Connected to PostgreSQL",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return nil
}

func (o *operator) connectSQLite(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	sqlDB, err := sql.Open(DriverSQLite, SQLiteDSN(cfg.Path))
	if err != nil {
		return SQLiteOpenError(cfg.Path, err)
	}
	// one connection keeps a write transaction and reads together
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return SQLiteOpenError(cfg.Path, err)
	}

	o.driver = DriverSQLite
	o.name = cfg.Path
	o.db = sqlDB
	slog.Info("Opened SQLite database", "path", cfg.Path)
	return nil
}

// PostgresDSN builds a connection string for pgx.
func PostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.PathEscape(cfg.User),
		url.PathEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
}

// SQLiteDSN adds pragmas to the path of a SQLite file.
func SQLiteDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
}

// Close releases the database connection.
func (o *operator) Close() error {
	var err error
	if o.db != nil {
		err = o.db.Close()
		o.db = nil
	}
	if o.pool != nil {
		o.pool.Close()
		o.pool = nil
	}
	return err
}

func (o *operator) Driver() string {
	return o.driver
}

func (o *operator) DB() *sql.DB {
	return o.db
}

func (o *operator) Pool() *pgxpool.Pool {
	return o.pool
}

// TableExists checks if a table exists in the current database.
func (o *operator) TableExists(
	ctx context.Context,
	tableName string,
) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}

	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	if o.driver == DriverSQLite {
		query = `
		SELECT EXISTS (
			SELECT 1 FROM sqlite_master
			WHERE type = 'table' AND name = ?
		)`
	}

	var exists bool
	err := o.db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, TableExistsCheckError(tableName, err)
	}

	return exists, nil
}

// HasTables checks if the database has any user tables.
func (o *operator) HasTables(ctx context.Context) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}

	tables, err := o.tables(ctx)
	if err != nil {
		return false, TableCheckError(err)
	}
	return len(tables) > 0, nil
}

// DropAllTables drops all user tables of the database.
func (o *operator) DropAllTables(ctx context.Context) error {
	if o.db == nil {
		return NotConnectedError()
	}

	tables, err := o.tables(ctx)
	if err != nil {
		return err
	}

	format := "DROP TABLE IF EXISTS %s CASCADE"
	if o.driver == DriverSQLite {
		format = "DROP TABLE IF EXISTS %s"
	}
	for _, table := range tables {
		dropSQL := fmt.Sprintf(format, table)
		if _, err := o.db.ExecContext(ctx, dropSQL); err != nil {
			return DropTableError(table, err)
		}
		slog.Info("Dropped table", "table", table)
	}

	return nil
}

func (o *operator) tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT tablename
		FROM pg_tables
		WHERE schemaname = 'public'`
	if o.driver == DriverSQLite {
		query = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	}

	rows, err := o.db.QueryContext(ctx, query)
	if err != nil {
		return nil, QueryTablesError(err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, ScanTableError(err)
		}
		res = append(res, tableName)
	}

	if err := rows.Err(); err != nil {
		return nil, ScanTableError(err)
	}
	return res, nil
}
