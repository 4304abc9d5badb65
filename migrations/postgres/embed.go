// Package migrations embeds the PostgreSQL schema migrations of the CRM.
package migrations

import "embed"

// FS contains the shared-schema migrations (control plane and tenant data).
//
//go:embed schema/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "schema"
