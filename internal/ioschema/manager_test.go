package ioschema_test

import (
	"context"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/internal/iodb"
	"github.com/gnames/gnbackbone/internal/ioschema"
	"github.com/gnames/gnbackbone/internal/iotesting"
	"github.com/gnames/gnbackbone/pkg/config"
	"github.com/gnames/gnbackbone/pkg/db"
	"github.com/gnames/gnbackbone/pkg/errcode"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) db.Operator {
	op := iodb.NewOperator()
	require.NoError(t, op.Connect(context.Background(), iotesting.SQLiteConfig(t)))
	t.Cleanup(func() { op.Close() })
	return op
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	return gnErr.Code
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	op := connect(t)
	sm := ioschema.NewManager(op)

	require.NoError(t, sm.Create(ctx))
	for _, v := range schema.TableNames() {
		exists, err := op.TableExists(ctx, v)
		require.NoError(t, err)
		assert.True(exists, v)
	}

	version, err := sm.CheckVersion(ctx)
	require.NoError(t, err)
	assert.Equal(config.SchemaVersion, version)

	// lineage uniqueness is enforced by the database
	q := `INSERT INTO nodes (id, parent_id, rank, name, kingdom)
		VALUES (?, 2, 'kingdom', 'Plantae', 'Plantae')`
	_, err = op.DB().ExecContext(ctx, q, 3)
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx, q, 4)
	assert.Error(err)

	// a second create hits existing tables
	assert.Equal(errcode.SchemaCreateError, errCode(t, sm.Create(ctx)))
}

func TestMigrate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	op := connect(t)
	sm := ioschema.NewManager(op)

	require.NoError(t, sm.Create(ctx))
	_, err := op.DB().ExecContext(ctx, "DROP TABLE synonyms")
	require.NoError(t, err)

	require.NoError(t, sm.Migrate(ctx))
	exists, err := op.TableExists(ctx, "synonyms")
	require.NoError(t, err)
	assert.True(exists)

	// idempotent
	require.NoError(t, sm.Migrate(ctx))
	version, err := sm.CheckVersion(ctx)
	require.NoError(t, err)
	assert.Equal(config.SchemaVersion, version)
}

func TestCheckVersion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		msg     string
		version string
		code    gn.ErrorCode
	}{
		{"empty", "", errcode.SchemaVersionError},
		{"malformed", "latest", errcode.SchemaVersionError},
		{"too old", "v0.0.1", errcode.SchemaVersionTooOldError},
	}

	for _, v := range tests {
		op := connect(t)
		sm := ioschema.NewManager(op)
		require.NoError(t, sm.Create(ctx), v.msg)
		_, err := op.DB().ExecContext(ctx, "DELETE FROM schema_versions")
		require.NoError(t, err, v.msg)
		if v.version != "" {
			_, err = op.DB().ExecContext(ctx,
				"INSERT INTO schema_versions (version) VALUES (?)", v.version)
			require.NoError(t, err, v.msg)
		}

		_, err = sm.CheckVersion(ctx)
		assert.Equal(t, v.code, errCode(t, err), v.msg)
	}
}

func TestNotConnected(t *testing.T) {
	sm := ioschema.NewManager(iodb.NewOperator())
	err := sm.Create(context.Background())
	assert.Equal(t, errcode.DBNotConnectedError, errCode(t, err))
}
