// Package fixtures provides the library domain used throughout the tests:
// readers, books and authors, their entity kinds, filter schemas and sortable properties,
// the DDL for SQLite and PostgreSQL, and a deterministic data set to seed both with.
package fixtures
