// Package migrations embeds the SQL schema applied by goose on start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
