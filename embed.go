package folio

import "embed"

// Migrations holds the goose migrations, one directory per SQL dialect:
// migrations/sqlite and migrations/postgres.
//
//go:embed migrations
var Migrations embed.FS
