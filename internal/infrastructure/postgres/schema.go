package postgres

import _ "embed"

// SchemaSQL esquema del almacén de un campus (lo aplica cmd/migrate).
//
//go:embed schema.sql
var SchemaSQL string
