// Package migrations embeds SQL migration files into the binary.
//
// Files live in one directory per SQL dialect (sqlite/, postgres/) and are
// registered with the database package at init.
package migrations

import (
	"embed"

	"github.com/nerrad567/fieldtask-core/internal/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
