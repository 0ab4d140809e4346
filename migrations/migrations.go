// Package migrations embeds the Postgres schema scripts.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
