// Package postgreswrapper creates sessions on a seeded PostgreSQL test database through the pgx, sql.DB
// or sqlx adapter, selected by the ADAPTER_TYPE environment variable (pgx.pool, sql.db, sqlx.db).
package postgreswrapper
