package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/entity-collections-go/entitycollection"
	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine"
)

// RecordingSession is an entitycollection.Session that records the SQL it is asked to run
// and answers every query with no rows, or with the configured error.
type RecordingSession struct {
	dialect string
	tracker *sqlengine.IdentityMap
	err     error
	queries []string
	mu      sync.Mutex
}

// NewRecordingSession creates a RecordingSession building queries for dialect.
func NewRecordingSession(dialect string) *RecordingSession {
	return &RecordingSession{
		dialect: dialect,
		tracker: sqlengine.NewIdentityMap(),
	}
}

// NewFailingSession creates a RecordingSession whose queries fail with err.
func NewFailingSession(dialect string, err error) *RecordingSession {
	s := NewRecordingSession(dialect)
	s.err = err

	return s
}

func (s *RecordingSession) Dialect() string {
	return s.dialect
}

func (s *RecordingSession) Runner() entitycollection.QueryRunner {
	return s
}

func (s *RecordingSession) Tracker() entitycollection.EntityTracker {
	return s.tracker
}

func (s *RecordingSession) Query(_ context.Context, sqlQuery string) (entitycollection.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, sqlQuery)

	if s.err != nil {
		return nil, s.err
	}

	return &noRows{}, nil
}

// Queries returns the recorded SQL in execution order.
func (s *RecordingSession) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.queries...)
}

// LastQuery returns the most recently recorded SQL, or "" if nothing ran.
func (s *RecordingSession) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queries) == 0 {
		return ""
	}

	return s.queries[len(s.queries)-1]
}

type noRows struct{}

func (*noRows) Next() bool        { return false }
func (*noRows) Scan(...any) error { return nil }
func (*noRows) Close() error      { return nil }
func (*noRows) Err() error        { return nil }
