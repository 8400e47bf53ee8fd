package migrations

import "embed"

// Migration files are embedded so the binary carries its own schema.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
