// Package migrations embeds the SQL schema files into the binary and
// registers them with the database package at init.
//
// Import it for its side effect wherever a schema is needed:
//
//	import _ "github.com/kevann/nosteq-core/migrations"
package migrations

import (
	"embed"

	"github.com/kevann/nosteq-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
