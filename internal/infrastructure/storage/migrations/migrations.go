// Package migrations holds the SQLite schema as goose SQL migrations.
package migrations

import "embed"

// FS contains every migration file, applied in version order.
//
//go:embed *.sql
var FS embed.FS
