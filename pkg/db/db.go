// Package db provides the SQLite storage used for resumable generation state.
package db

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// StateFileName is the database file kept next to the prompts file
const StateFileName = "generation_state.db"

// pragmas are applied by the driver to every new connection
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"temp_store(MEMORY)",
}

// DefaultDBPath returns the state database for the skills repository at root.
// SKILLCTL_STATE_DB overrides the location.
func DefaultDBPath(root string) string {
	if path := os.Getenv("SKILLCTL_STATE_DB"); path != "" {
		return path
	}
	return filepath.Join(root, "tools", StateFileName)
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens or creates the SQLite database at path, creating its directory.
// Generation writes state after every skill, so a single connection serialises them.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	sqlDB, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	if err := CheckPragmas(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// OpenMigrated opens the database at path and applies pending migrations
func OpenMigrated(ctx context.Context, path string, migrations []Migration) (*sqlx.DB, error) {
	sqlDB, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := NewMigrationRunner(sqlDB).Run(ctx, migrations); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// CheckPragmas verifies that the connection runs in WAL mode with foreign keys enabled
func CheckPragmas(ctx context.Context, sqlDB *sqlx.DB) error {
	want := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
	}
	for name, expected := range want {
		var got string
		if err := sqlDB.GetContext(ctx, &got, "PRAGMA "+name); err != nil {
			return errors.Wrapf(err, "failed to query pragma %s", name)
		}
		if strings.ToLower(got) != expected {
			return errors.Errorf("pragma %s is %s, expected %s", name, got, expected)
		}
	}
	return nil
}
