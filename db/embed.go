// Package db embeds the database schema.
package db

import _ "embed"

// Schema holds the DDL for every table. All statements are idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
