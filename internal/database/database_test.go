package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t,
		":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		sqliteDSN(":memory:"))
	assert.Equal(t,
		"file:notes.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		sqliteDSN("file:notes.db?mode=rwc"))
}

func TestNew_UnsupportedDialect(t *testing.T) {
	_, err := New(context.Background(), Dialect("oracle"), "x")
	assert.ErrorContains(t, err, "unsupported dialect")
}

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, SQLite))
	// Running twice is a no-op.
	require.NoError(t, Migrate(ctx, db, SQLite))

	for _, table := range []string{"users", "notes", "teams", "memberships", "user_notes"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestDialectLower(t *testing.T) {
	assert.Equal(t, "unicode_lower(name)", SQLite.Lower("name"))
	assert.Equal(t, "LOWER(name)", Postgres.Lower("name"))

	ctx := context.Background()
	db, err := New(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	var got string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT unicode_lower(?)", "ÁGNES Ölund").Scan(&got))
	assert.Equal(t, "ágnes ölund", got)

	var null *string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT unicode_lower(NULL)").Scan(&null))
	assert.Nil(t, null)
}
