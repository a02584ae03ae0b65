package migrations

import (
	"database/sql"

	"github.com/cerebratechai/skillctl/pkg/db"
	"github.com/pkg/errors"
)

// Migration20261019100001CreateGenerationRuns records one row per generator invocation.
func Migration20261019100001CreateGenerationRuns() db.Migration {
	return db.Migration{
		Version:     20261019100001,
		Description: "Create generation_runs table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS generation_runs (
					id TEXT PRIMARY KEY,
					mode TEXT NOT NULL,
					provider TEXT NOT NULL,
					started_at TEXT NOT NULL,
					finished_at TEXT,
					succeeded INTEGER NOT NULL DEFAULT 0,
					failed INTEGER NOT NULL DEFAULT 0,
					skipped INTEGER NOT NULL DEFAULT 0,
					interrupted INTEGER NOT NULL DEFAULT 0
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create generation_runs table")
			}
			return nil
		},
		Down: func(tx *sql.Tx) error {
			if _, err := tx.Exec("DROP TABLE IF EXISTS generation_runs"); err != nil {
				return errors.Wrap(err, "failed to drop generation_runs table")
			}
			return nil
		},
	}
}
