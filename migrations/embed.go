// Package migrations embeds the goose SQL migrations: the AGE extension and
// the type-definition table.
package migrations

import "embed"

// FS embeds all .sql migration files in this directory.
//
//go:embed *.sql
var FS embed.FS
