// Command seed creates the library tables and loads the fixture data set, either into the PostgreSQL
// test database (configured like the integration tests) or into a SQLite file.
//
//	go run ./testutil/cmd/seed                     # PostgreSQL
//	go run ./testutil/cmd/seed sqlite3 library.db  # SQLite
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/AntonStoeckl/entity-collections-go/testutil/config"
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		panic(fmt.Sprintf("Error seeding fixture data: %v\n", err))
	}
}

func run(args []string) error {
	dialect := fixtures.DialectPostgres
	if len(args) > 0 {
		dialect = args[0]
	}

	db, err := open(dialect, args)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close() // makes no sense to handle this
	}()

	ctx := context.Background()

	if err = fixtures.CreateSchema(ctx, db, dialect); err != nil {
		return err
	}

	if err = fixtures.Truncate(ctx, db, dialect); err != nil {
		return err
	}

	if err = fixtures.Seed(ctx, db, dialect); err != nil {
		return err
	}

	fmt.Printf(
		"seeded %d readers, %d authors and %d books (%s)\n",
		len(fixtures.Readers()), len(fixtures.Authors()), len(fixtures.Books()), dialect,
	)

	return nil
}

func open(dialect string, args []string) (*sql.DB, error) {
	switch dialect {
	case fixtures.DialectPostgres:
		return config.PostgresSQLDBConfig(), nil

	case fixtures.DialectSQLite:
		if len(args) < 2 {
			return nil, errors.New("usage: seed sqlite3 <database file>")
		}

		return sql.Open("sqlite3", args[1])

	default:
		return nil, fmt.Errorf("%w: %q", fixtures.ErrUnsupportedDialect, dialect)
	}
}
