package migrations

import (
	"database/sql"

	"github.com/cerebratechai/skillctl/pkg/db"
	"github.com/pkg/errors"
)

// Migration20261019100000CreateGenerationItems creates the per-skill generation state table.
func Migration20261019100000CreateGenerationItems() db.Migration {
	return db.Migration{
		Version:     20261019100000,
		Description: "Create generation_items table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS generation_items (
					path TEXT PRIMARY KEY,
					status TEXT NOT NULL CHECK (status IN ('generated', 'failed')),
					error TEXT NOT NULL DEFAULT '',
					attempts INTEGER NOT NULL DEFAULT 0,
					updated_at TEXT NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create generation_items table")
			}

			if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_generation_items_status ON generation_items(status, updated_at)`); err != nil {
				return errors.Wrap(err, "failed to create generation_items status index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			if _, err := tx.Exec("DROP TABLE IF EXISTS generation_items"); err != nil {
				return errors.Wrap(err, "failed to drop generation_items table")
			}
			return nil
		},
	}
}
