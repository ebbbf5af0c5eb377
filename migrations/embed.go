// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds the versioned migration files, named NNN_description.sql.
//
//go:embed *.sql
var FS embed.FS
