package sqlengine

import (
	"fmt"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
)

// Option defines a functional option for configuring a Session.
type Option func(*Session) error

// WithDialect sets the goqu dialect used to build queries (default: "postgres").
// Supported are "postgres" and "sqlite3".
func WithDialect(dialect string) Option {
	return func(s *Session) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			s.dialect = dialect
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
		}
	}
}

// WithLogger sets the logger for the Session.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Row counts and durations of completed queries (production-safe)
// Warn level: Non-critical issues like failures to close rows
// Error level: Failed queries and row iteration failures.
func WithLogger(logger entitycollection.Logger) Option {
	return func(s *Session) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Session.
// It receives the same messages as the Logger, together with the context of the query,
// which allows trace correlation when tracing is enabled.
func WithContextualLogger(logger entitycollection.ContextualLogger) Option {
	return func(s *Session) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Session.
// It receives query durations, queried row counts, and database errors.
func WithMetrics(collector entitycollection.MetricsCollector) Option {
	return func(s *Session) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Session.
// One span is started per query and finished when its rows are closed.
func WithTracing(collector entitycollection.TracingCollector) Option {
	return func(s *Session) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithTracker replaces the session's identity map, e.g. to share one between sessions.
func WithTracker(tracker entitycollection.EntityTracker) Option {
	return func(s *Session) error {
		if tracker == nil {
			return fmt.Errorf("%w: nil tracker", entitycollection.ErrInvalidArgument)
		}

		s.tracker = tracker

		return nil
	}
}
