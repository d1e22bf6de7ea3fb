package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine"
	"github.com/AntonStoeckl/entity-collections-go/testutil/config"
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetSession() sqlengine.Session
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool
	session     sqlengine.Session
}

func (e *PGXPoolWrapper) GetSession() sqlengine.Session {
	return e.session
}

func (e *PGXPoolWrapper) Close() {
	if e.replicaPool != nil {
		e.replicaPool.Close()
	}

	e.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db      *sql.DB
	session sqlengine.Session
}

func (e *SQLDBWrapper) GetSession() sqlengine.Session {
	return e.session
}

func (e *SQLDBWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db      *sqlx.DB
	session sqlengine.Session
}

func (e *SQLXWrapper) GetSession() sqlengine.Session {
	return e.session
}

func (e *SQLXWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper selected by the ADAPTER_TYPE environment variable
// on a freshly seeded test database. The test is skipped if no PostgreSQL database is configured.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	if !config.PostgresConfigured() {
		t.Skip("no PostgreSQL test database configured")
	}

	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
		require.NoError(t, err, "error connecting to DB pool in test setup")

		db := stdlib.OpenDBFromPool(connPool)
		defer func() {
			_ = db.Close() // the pool stays open
		}()

		reset(t, db)

		session, err := sqlengine.NewSessionFromPGXPool(connPool, options...)
		require.NoError(t, err, "error creating session")

		return &PGXPoolWrapper{pool: connPool, session: session}

	case typeSQLDB:
		db := config.PostgresSQLDBConfig()
		reset(t, db)

		session, err := sqlengine.NewSessionFromSQLDB(db, options...)
		require.NoError(t, err, "error creating session")

		return &SQLDBWrapper{db: db, session: session}

	case typeSQLXDB:
		db := config.PostgresSQLXConfig()
		reset(t, db)

		session, err := sqlengine.NewSessionFromSQLX(db, options...)
		require.NoError(t, err, "error creating session")

		return &SQLXWrapper{db: db, session: session}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// CreateReplicaWrapperWithTestConfig creates a pgxpool wrapper whose session reads from the replica pool.
// Without ENTITYCOLLECTION_POSTGRES_REPLICA_DSN the replica pool connects to the primary database.
func CreateReplicaWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	if !config.PostgresConfigured() {
		t.Skip("no PostgreSQL test database configured")
	}

	connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
	require.NoError(t, err, "error connecting to DB pool in test setup")

	db := stdlib.OpenDBFromPool(connPool)
	defer func() {
		_ = db.Close() // the pool stays open
	}()

	reset(t, db)

	replicaPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolReplicaConfig())
	require.NoError(t, err, "error connecting to replica DB pool in test setup")

	session, err := sqlengine.NewSessionFromPGXPoolWithReplica(connPool, replicaPool, options...)
	require.NoError(t, err, "error creating session")

	return &PGXPoolWrapper{pool: connPool, replicaPool: replicaPool, session: session}
}

func reset(t testing.TB, db fixtures.Execer) {
	ctx := context.Background()

	err := fixtures.CreateSchema(ctx, db, fixtures.DialectPostgres)
	assert.NoError(t, err, "error creating the library schema")

	err = fixtures.Truncate(ctx, db, fixtures.DialectPostgres)
	assert.NoError(t, err, "error cleaning up the library tables")

	err = fixtures.Seed(ctx, db, fixtures.DialectPostgres)
	assert.NoError(t, err, "error seeding the library tables")
}
