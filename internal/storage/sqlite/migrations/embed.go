// Package migrations contains embedded SQL migrations for the SQLite store.
package migrations

import "embed"

//go:embed runs/*.sql
var RunsFS embed.FS
