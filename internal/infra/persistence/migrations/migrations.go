// Package migrations embeds the goose SQL migrations for the storefront schema.
package migrations

import "embed"

// FS holds every migration file of this directory.
//
//go:embed *.sql
var FS embed.FS
