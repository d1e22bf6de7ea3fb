// Package sqlengine provides the SQL implementation of entitycollection.Session.
//
// A Session runs the queries lazy collections build, through one of the supported
// database adapters (pgx, sql.DB, sqlx), and owns the identity map entities are tracked in.
// PostgreSQL is the default dialect; SQLite (mattn/go-sqlite3) is supported via WithDialect.
//
// Key features:
//   - Multiple database adapter support (PGX with optional read replica, SQL, SQLX)
//   - Identity map with explicit attach, lookup and detach
//   - Optional logging, contextual logging, metrics and tracing through dependency-free interfaces
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	session, _ := sqlengine.NewSessionFromPGXPool(db)
//
//	// SQLite with SQL logging
//	sqliteDB, _ := sql.Open("sqlite3", "file:library.db")
//	session, _ := sqlengine.NewSessionFromSQLDB(
//		sqliteDB,
//		sqlengine.WithDialect(sqlengine.DialectSQLite),
//		sqlengine.WithLogger(slog.Default()),
//	)
//
//	// OpenTelemetry
//	session, _ := sqlengine.NewSessionFromPGXPool(
//		db,
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("entitycollection")),
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("entitycollection"))),
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("entitycollection"))),
//	)
//
//	readers, _ := entitycollection.Lazy(session, readerKind)
package sqlengine
