// Package adapters provide database adapter implementations for the SQL session.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool (optionally with a read replica), sql.DB, and sqlx.DB. All adapters provide
// equivalent read access through a common DBAdapter interface, so the session works
// with any supported connection type and any database/sql driver (lib/pq, go-sqlite3).
package adapters
