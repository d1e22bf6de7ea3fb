package fixtures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
)

// Dialect names as used by goqu and sqlengine.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// ErrUnsupportedDialect is returned for dialects without DDL.
var ErrUnsupportedDialect = errors.New("no library schema for dialect")

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS readers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		age INTEGER,
		joined TIMESTAMP NOT NULL,
		last_visit TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		genre TEXT NOT NULL,
		pages INTEGER,
		published TIMESTAMP,
		author_id TEXT NOT NULL,
		borrower_id TEXT
	)`,
}

// Text columns use the C collation so the database orders strings byte-wise, like in memory.
var postgresDDL = []string{
	`CREATE TABLE IF NOT EXISTS readers (
		id UUID PRIMARY KEY,
		name TEXT COLLATE "C" NOT NULL,
		email TEXT COLLATE "C" NOT NULL,
		status TEXT COLLATE "C" NOT NULL,
		age INTEGER,
		joined TIMESTAMPTZ NOT NULL,
		last_visit TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id UUID PRIMARY KEY,
		name TEXT COLLATE "C" NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id UUID PRIMARY KEY,
		title TEXT COLLATE "C" NOT NULL,
		genre TEXT COLLATE "C" NOT NULL,
		pages INTEGER,
		published TIMESTAMPTZ,
		author_id UUID NOT NULL,
		borrower_id UUID
	)`,
	`CREATE INDEX IF NOT EXISTS books_author_id_idx ON books (author_id)`,
}

// Execer is satisfied by *sql.DB, *sql.Tx, *sql.Conn and *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DDL returns the statements creating the library tables.
func DDL(dialect string) ([]string, error) {
	switch dialect {
	case DialectSQLite:
		return sqliteDDL, nil
	case DialectPostgres:
		return postgresDDL, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}
}

// CreateSchema creates the library tables.
func CreateSchema(ctx context.Context, db Execer, dialect string) error {
	statements, err := DDL(dialect)
	if err != nil {
		return err
	}

	for _, statement := range statements {
		if _, execErr := db.ExecContext(ctx, statement); execErr != nil {
			return fmt.Errorf("creating schema: %w", execErr)
		}
	}

	return nil
}

// Truncate deletes all rows of the library tables.
func Truncate(ctx context.Context, db Execer, dialect string) error {
	for _, table := range []string{BooksTable, AuthorsTable, ReadersTable} {
		sqlQuery, _, err := entitycollection.QueryDialect(dialect).Delete(table).ToSQL()
		if err != nil {
			return err
		}

		if _, execErr := db.ExecContext(ctx, sqlQuery); execErr != nil {
			return fmt.Errorf("truncating %s: %w", table, execErr)
		}
	}

	return nil
}

// Seed inserts the data set. SQLite stores times as text in entitycollection.SQLiteTimeLayout.
func Seed(ctx context.Context, db Execer, dialect string) error {
	inserts := []*goqu.InsertDataset{
		entitycollection.QueryDialect(dialect).Insert(ReadersTable).Rows(readerRecords(Readers())...),
		entitycollection.QueryDialect(dialect).Insert(AuthorsTable).Rows(authorRecords(Authors())...),
		entitycollection.QueryDialect(dialect).Insert(BooksTable).Rows(bookRecords(Books())...),
	}

	for _, insert := range inserts {
		sqlQuery, _, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("building seed insert: %w", err)
		}

		if _, execErr := db.ExecContext(ctx, sqlQuery); execErr != nil {
			return fmt.Errorf("seeding: %w", execErr)
		}
	}

	return nil
}

// InsertReaders inserts additional readers.
func InsertReaders(ctx context.Context, db Execer, dialect string, readers ...*Reader) error {
	sqlQuery, _, err := entitycollection.QueryDialect(dialect).Insert(ReadersTable).Rows(readerRecords(readers)...).ToSQL()
	if err != nil {
		return fmt.Errorf("building reader insert: %w", err)
	}

	if _, execErr := db.ExecContext(ctx, sqlQuery); execErr != nil {
		return fmt.Errorf("inserting readers: %w", execErr)
	}

	return nil
}

// Setup creates the schema and seeds it.
func Setup(ctx context.Context, db Execer, dialect string) error {
	if err := CreateSchema(ctx, db, dialect); err != nil {
		return err
	}

	return Seed(ctx, db, dialect)
}

func readerRecords(readers []*Reader) []any {
	records := make([]any, 0, len(readers))

	for _, r := range readers {
		records = append(records, goqu.Record{
			"id":         r.ID,
			"name":       r.Name,
			"email":      r.Email,
			"status":     r.Status,
			"age":        r.Age,
			"joined":     r.Joined,
			"last_visit": r.LastVisit,
		})
	}

	return records
}

func authorRecords(authors []Author) []any {
	records := make([]any, 0, len(authors))

	for _, a := range authors {
		records = append(records, goqu.Record{"id": a.ID, "name": a.Name})
	}

	return records
}

func bookRecords(books []*Book) []any {
	records := make([]any, 0, len(books))

	for _, b := range books {
		records = append(records, goqu.Record{
			"id":          b.ID,
			"title":       b.Title,
			"genre":       b.Genre,
			"pages":       b.Pages,
			"published":   b.Published,
			"author_id":   b.AuthorID,
			"borrower_id": b.BorrowerID,
		})
	}

	return records
}
