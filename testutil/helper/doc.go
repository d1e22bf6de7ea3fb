// Package helper provides test helpers for entity collections: in-memory SQLite sessions seeded with
// the library fixtures, a recording session for asserting generated SQL, and spies for logging,
// metrics and tracing.
package helper
