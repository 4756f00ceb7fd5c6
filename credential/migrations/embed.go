// Package migrations embeds the credential schema so [credential.OpenSQLite]
// can migrate a fresh database without SQL files on disk.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
