// Package migrations embeds the audit store schema into the binary so
// devparamd can migrate without SQL files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/devparam-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
