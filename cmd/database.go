package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iodb"
	"github.com/gnames/gnbackbone/internal/ioschema"
	"github.com/gnames/gnbackbone/internal/iosql"
	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/gnames/gnbackbone/pkg/db"
	"github.com/gnames/gnbackbone/pkg/store"
)

// dbLabel describes the configured database for messages.
func dbLabel(c *config.DatabaseConfig) string {
	if c.Driver == iodb.DriverSQLite {
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

func connect(ctx context.Context) (db.Operator, error) {
	op := iodb.NewOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}
	gn.Info("Connected to database: <em>%s</em>", dbLabel(&cfg.Database))
	return op, nil
}

// openStore connects to a database with an up-to-date schema and
// returns its TaxonomyStore. Callers close the store, then the operator.
func openStore(ctx context.Context) (db.Operator, store.TaxonomyStore, error) {
	op, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	if !hasTables {
		op.Close()
		return nil, nil, iodb.EmptyDatabaseError(dbLabel(&cfg.Database))
	}

	version, err := ioschema.NewManager(op).CheckVersion(ctx)
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	slog.Info("Schema version checked", "version", version)

	return op, iosql.New(op, cfg.Database.BatchSize), nil
}

// confirm asks a yes/no question, anything but yes/y is a no.
func confirm(r io.Reader, question string) (bool, error) {
	fmt.Printf("\n%s (yes/no): ", question)
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}
