package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine/internal/adapters"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

const (
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgRowsIterationFailed = "database rows iteration failed"
	logMsgQueryCompleted      = "query completed"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "entitycollection operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrRowCount           = "row_count"
	logAttrDurationMS         = "duration_ms"
	logActionQuery            = "query"
)

// ErrNilDatabaseConnection is returned by the constructors when no connection is given.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrUnsupportedDialect is returned by WithDialect for dialects other than postgres and sqlite3.
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")

// Session is an entitycollection.Session on top of a SQL database.
// It runs the queries of lazy collections with optional logging, metrics and tracing
// and owns the identity map entities are tracked in.
type Session struct {
	db               adapters.DBAdapter
	dialect          string
	tracker          entitycollection.EntityTracker
	logger           entitycollection.Logger
	contextualLogger entitycollection.ContextualLogger
	metricsCollector entitycollection.MetricsCollector
	tracingCollector entitycollection.TracingCollector
}

// NewSessionFromPGXPool creates a new Session using a pgx Pool with optional configuration.
func NewSessionFromPGXPool(db *pgxpool.Pool, options ...Option) (Session, error) {
	if db == nil {
		return Session{}, ErrNilDatabaseConnection
	}

	return newSession(adapters.NewPGXAdapter(db), options)
}

// NewSessionFromPGXPoolWithReplica creates a new Session that sends its queries to the replica pool.
func NewSessionFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Session, error) {
	if primary == nil || replica == nil {
		return Session{}, ErrNilDatabaseConnection
	}

	return newSession(adapters.NewPGXAdapterWithReplica(primary, replica), options)
}

// NewSessionFromSQLDB creates a new Session using a sql.DB with optional configuration.
// Use WithDialect(DialectSQLite) for a go-sqlite3 database.
func NewSessionFromSQLDB(db *sql.DB, options ...Option) (Session, error) {
	if db == nil {
		return Session{}, ErrNilDatabaseConnection
	}

	return newSession(adapters.NewSQLAdapter(db), options)
}

// NewSessionFromSQLX creates a new Session using a sqlx.DB with optional configuration.
func NewSessionFromSQLX(db *sqlx.DB, options ...Option) (Session, error) {
	if db == nil {
		return Session{}, ErrNilDatabaseConnection
	}

	return newSession(adapters.NewSQLXAdapter(db), options)
}

func newSession(db adapters.DBAdapter, options []Option) (Session, error) {
	s := Session{
		db:      db,
		dialect: DialectPostgres,
		tracker: NewIdentityMap(),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Session{}, err
		}
	}

	return s, nil
}

func (s Session) Dialect() string {
	return s.dialect
}

func (s Session) Runner() entitycollection.QueryRunner {
	return s
}

func (s Session) Tracker() entitycollection.EntityTracker {
	return s.tracker
}

// Query executes sqlQuery and returns its rows.
// The query is reported as completed, with its row count, when the rows are closed.
func (s Session) Query(ctx context.Context, sqlQuery string) (entitycollection.Rows, error) {
	tracer, ctx := s.startQueryTracing(ctx)
	metrics := s.startQueryMetrics(ctx)

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		metrics.recordError(errorTypeDatabaseQuery, duration)
		tracer.finishError(errorTypeDatabaseQuery, duration)

		return nil, errors.Join(entitycollection.ErrQueryingEntitiesFailed, queryErr)
	}

	return &observedRows{
		rows:    rows,
		session: s,
		ctx:     ctx,
		start:   start,
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// observedRows reports the outcome of a query when it is closed.
type observedRows struct {
	rows     adapters.DBRows
	session  Session
	ctx      context.Context
	start    time.Time
	tracer   *queryTracingObserver
	metrics  *queryMetricsObserver
	rowCount int
	closed   bool
}

func (r *observedRows) Next() bool {
	if r.rows.Next() {
		r.rowCount++
		return true
	}

	return false
}

func (r *observedRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *observedRows) Err() error {
	return r.rows.Err()
}

func (r *observedRows) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	s := r.session

	closeErr := r.rows.Close()
	if closeErr != nil {
		s.logWarn(r.ctx, logMsgCloseRowsFailed, closeErr)
	}

	duration := time.Since(r.start)

	if iterationErr := r.rows.Err(); iterationErr != nil {
		s.logError(r.ctx, logMsgRowsIterationFailed, iterationErr)
		r.metrics.recordError(errorTypeRowIteration, duration)
		r.tracer.finishError(errorTypeRowIteration, duration)

		return closeErr
	}

	s.logOperation(
		r.ctx,
		logMsgQueryCompleted,
		logAttrRowCount, r.rowCount,
		logAttrDurationMS, s.toMilliseconds(duration),
	)
	r.metrics.recordSuccess(r.rowCount, duration)
	r.tracer.finishSuccess(r.rowCount, duration)

	return closeErr
}
