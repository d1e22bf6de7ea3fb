package helper

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine"
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
)

// GivenLibrary declares the library kinds, filters and properties.
func GivenLibrary(t testing.TB) fixtures.Library {
	lib, err := fixtures.NewLibrary()
	require.NoError(t, err, "error declaring the library fixtures")

	return lib
}

// GivenSeededSQLiteDB opens a private in-memory SQLite database with the library schema and data set.
// It is limited to one connection, as every connection to ":memory:" is a database of its own.
func GivenSeededSQLiteDB(t testing.TB) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "error opening sqlite database")

	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close() // makes no sense to handle this
	})

	err = fixtures.Setup(context.Background(), db, fixtures.DialectSQLite)
	require.NoError(t, err, "error seeding sqlite database")

	return db
}

// GivenSQLiteSession returns a session on a freshly seeded in-memory SQLite database.
func GivenSQLiteSession(t testing.TB, options ...sqlengine.Option) sqlengine.Session {
	db := GivenSeededSQLiteDB(t)

	options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
	session, err := sqlengine.NewSessionFromSQLDB(db, options...)
	require.NoError(t, err, "error creating sqlite session")

	return session
}

// GivenLazyReaders returns the lazy collection of all readers in session.
func GivenLazyReaders(
	t testing.TB,
	session entitycollection.Session,
	lib fixtures.Library,
) entitycollection.Collection[*fixtures.Reader] {

	readers, err := entitycollection.Lazy(session, lib.ReaderKind)
	require.NoError(t, err, "error creating lazy readers")

	return readers
}

// GivenLazyBooks returns the lazy collection of all books in session.
func GivenLazyBooks(
	t testing.TB,
	session entitycollection.Session,
	lib fixtures.Library,
) entitycollection.Collection[*fixtures.Book] {

	books, err := entitycollection.Lazy(session, lib.BookKind)
	require.NoError(t, err, "error creating lazy books")

	return books
}

// CollectIDs collects the IDs of all entities of c, in order.
func CollectIDs[E any](t testing.TB, ctx context.Context, c entitycollection.Collection[E], id func(E) uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0)

	for entity, err := range c.All(ctx) {
		require.NoError(t, err, "error iterating the collection")
		ids = append(ids, id(entity))
	}

	return ids
}

// ReaderID and BookID extract entity IDs for CollectIDs.
func ReaderID(r *fixtures.Reader) uuid.UUID { return r.ID }

func BookID(b *fixtures.Book) uuid.UUID { return b.ID }

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
