package db

import "embed"

// MigrationFS embeds the account schema migrations from internal/db/migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
