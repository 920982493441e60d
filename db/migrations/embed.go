// Package migrations embeds the SQL schema so binaries migrate without a source tree.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
