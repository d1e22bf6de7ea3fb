package entitycollection

import "context"

// Session is the store a lazy collection queries.
// sqlengine.Session implements it on top of pgx, database/sql and sqlx.
type Session interface {
	// Dialect returns the goqu dialect name used to build queries, e.g. "postgres" or "sqlite3".
	Dialect() string
	Runner() QueryRunner
	Tracker() EntityTracker
}

// QueryRunner executes read queries.
type QueryRunner interface {
	Query(ctx context.Context, sqlQuery string) (Rows, error)
}

// Rows is a forward-only cursor over query results. It must be closed.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// EntityTracker is the identity map of a session.
// kind is the name of an entity kind and id an identity value usable as a map key.
type EntityTracker interface {
	Attach(kind string, id any, entity any)
	Lookup(kind string, id any) (any, bool)
	Detach(kind string, id any)
	Contains(kind string, id any) bool
}
