// Package migrations holds the goose SQL migrations of the audit database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
