// Package migrations embeds the gift service SQL migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
