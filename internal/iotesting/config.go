// Package iotesting provides shared test utilities for database tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/jackc/pgx/v5"
)

const (
	// TestDatabaseName is the PostgreSQL database used by integration
	// tests, so they never touch a production backbone.
	TestDatabaseName = "gnbackbone_test"
)

// SQLiteConfig returns a database configuration pointing to a fresh
// SQLite file in a temporary directory of the test.
func SQLiteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseDriver("sqlite"),
		config.OptDatabasePath(filepath.Join(t.TempDir(), "backbone.sqlite")),
	})
	return &cfg.Database
}

// PostgresConfig returns a configuration of the PostgreSQL test
// database. Connection settings come from GNBACKBONE_DATABASE_HOST,
// GNBACKBONE_DATABASE_PORT, GNBACKBONE_DATABASE_USER and
// GNBACKBONE_DATABASE_PASSWORD. The test is skipped with -short or
// when the server is not reachable.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    cfg := iotesting.PostgresConfig(t)
//	    // ... use cfg for database operations
//	}
func PostgresConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	cfg := postgresConfig()
	if !reachable(cfg) {
		t.Skipf("PostgreSQL database %s is not reachable", TestDatabaseName)
	}
	return cfg
}

func postgresConfig() *config.DatabaseConfig {
	cfg := config.New()
	opts := []config.Option{
		config.OptDatabaseDriver("postgres"),
		config.OptDatabaseDatabase(TestDatabaseName),
	}
	if s := os.Getenv("GNBACKBONE_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("GNBACKBONE_DATABASE_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if s := os.Getenv("GNBACKBONE_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("GNBACKBONE_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	cfg.Update(opts)
	return &cfg.Database
}

func reachable(cfg *config.DatabaseConfig) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pgCfg, err := pgx.ParseConfig("")
	if err != nil {
		return false
	}
	pgCfg.Host = cfg.Host
	pgCfg.Port = uint16(cfg.Port)
	pgCfg.User = cfg.User
	pgCfg.Password = cfg.Password
	pgCfg.Database = cfg.Database

	conn, err := pgx.ConnectConfig(ctx, pgCfg)
	if err != nil {
		return false
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx) == nil
}

// Configs returns configurations of every available backend: always
// SQLite, and PostgreSQL when it is reachable and tests are not short.
func Configs(t *testing.T) map[string]*config.DatabaseConfig {
	t.Helper()
	res := map[string]*config.DatabaseConfig{
		"sqlite": SQLiteConfig(t),
	}
	if testing.Short() {
		return res
	}

	if cfg := postgresConfig(); reachable(cfg) {
		res["postgres"] = cfg
	}
	return res
}
