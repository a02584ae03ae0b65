package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTable(name string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec("CREATE TABLE " + name + " (id INTEGER PRIMARY KEY)")
		return err
	}
}

func tableExists(t *testing.T, db interface {
	QueryRow(string, ...any) *sql.Row
}, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tools", "nested", StateFileName)

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, CheckPragmas(context.Background(), db))
	_, err = os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)

	var timeout int
	require.NoError(t, db.Get(&timeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 5000, timeout)
}

func TestDSN(t *testing.T) {
	got := dsn("/repo/tools/generation_state.db")
	assert.True(t, strings.HasPrefix(got, "file:/repo/tools/generation_state.db?"))
	assert.Contains(t, got, "_pragma=journal_mode%28WAL%29")
	assert.Contains(t, got, "_pragma=foreign_keys%28ON%29")
}

func TestDefaultDBPath(t *testing.T) {
	t.Run("inside the repository", func(t *testing.T) {
		t.Setenv("SKILLCTL_STATE_DB", "")
		assert.Equal(t, filepath.Join("/repo", "tools", "generation_state.db"), DefaultDBPath("/repo"))
	})

	t.Run("with SKILLCTL_STATE_DB", func(t *testing.T) {
		t.Setenv("SKILLCTL_STATE_DB", "/custom/state.db")
		assert.Equal(t, "/custom/state.db", DefaultDBPath("/repo"))
	})
}

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	// Out of order on purpose: the runner sorts by version
	migrations := []Migration{
		{
			Version:     20240101000002,
			Description: "Add column",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("ALTER TABLE test_table ADD COLUMN name TEXT")
				return err
			},
		},
		{Version: 20240101000001, Description: "Create test table", Up: createTable("test_table")},
	}

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run(ctx, migrations))
	assert.True(t, tableExists(t, db, "test_table"))

	versions, err := runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{20240101000001, 20240101000002}, versions)

	pending, err := runner.Pending(ctx, migrations)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Idempotent
	require.NoError(t, runner.Run(ctx, migrations))
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, 2, count)
}

func TestMigrationRunner_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{
			Version:     20240101000001,
			Description: "Broken",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec("CREATE TABLE half_done (id INTEGER)"); err != nil {
					return err
				}
				_, err := tx.Exec("SELECT * FROM missing_table")
				return err
			},
		},
	}

	runner := NewMigrationRunner(db)
	err = runner.Run(ctx, migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply migration 20240101000001: Broken")
	assert.False(t, tableExists(t, db, "half_done"))

	versions, err := runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestMigrationRunner_Rollback(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{
			Version:     20240101000001,
			Description: "Create test table",
			Up:          createTable("test_table"),
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP TABLE test_table")
				return err
			},
		},
		{Version: 20240101000002, Description: "No down", Up: createTable("other_table")},
	}

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run(ctx, migrations))

	err = runner.Rollback(ctx, migrations)
	assert.EqualError(t, err, "migration 20240101000002 has no rollback function")

	err = runner.Rollback(ctx, migrations[:1])
	assert.EqualError(t, err, "migration 20240101000002 not found in provided migrations")

	_, err = db.Exec("DELETE FROM schema_migrations WHERE version = 20240101000002")
	require.NoError(t, err)
	require.NoError(t, runner.Rollback(ctx, migrations))
	assert.False(t, tableExists(t, db, "test_table"))

	versions, err := runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)

	require.NoError(t, runner.Rollback(ctx, migrations))
}

func TestOpenMigrated(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMigrated(ctx, filepath.Join(t.TempDir(), "state.db"), []Migration{
		{Version: 1, Description: "one", Up: createTable("one")},
	})
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, tableExists(t, db, "one"))
}
