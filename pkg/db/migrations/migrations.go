// Package migrations contains the schema of the generation state database.
// Migrations use Rails-style timestamp versioning (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/cerebratechai/skillctl/pkg/db"
)

// All returns all registered migrations in the correct order.
// New migrations should be added to this list.
func All() []db.Migration {
	return []db.Migration{
		Migration20261019100000CreateGenerationItems(),
		Migration20261019100001CreateGenerationRuns(),
	}
}
