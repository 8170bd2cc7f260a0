// Package migrations embeds the SQL schema for the Content Conditioning
// Core's eight domain tables, discovered by bun's migrate.Migrations via
// internal/infrastructure/storage.NewMigrator.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
