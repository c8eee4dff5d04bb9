package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change, keyed by the file name that registers it.
var Migrations = migrate.NewMigrations()
