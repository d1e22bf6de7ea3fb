package entitycollection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper" //nolint:revive
)

// The golden files hold the exact SQL a lazy collection sends to the database.
// Regenerate them with: go test ./entitycollection -run Test_Lazy_ShouldBuildNativeSQL -update
func Test_Lazy_ShouldBuildNativeSQL(t *testing.T) {
	lib := GivenLibrary(t)
	adaID := uuid.MustParse("124936aa-3577-5383-9c59-3e97825201bd")

	tests := []struct {
		name    string
		dialect string
		run     func(t *testing.T, ctx context.Context, session Session)
	}{
		{
			name:    "all_readers",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				_, err := GivenLazyReaders(t, session, lib).Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "filtered_sorted_sliced_readers",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				filter, err := lib.ReaderSchema.Filter(C("statuses", []string{"active", "suspended"}), C("neverVisited", false))
				require.NoError(t, err)
				comparator, err := lib.ReaderSchema.Comparator(Desc("lastVisit"), Asc("name"))
				require.NoError(t, err)

				filtered, err := GivenLazyReaders(t, session, lib).Filter(ctx, filter)
				require.NoError(t, err)
				sorted, err := filtered.SortBy(ctx, comparator)
				require.NoError(t, err)
				_, err = sorted.Slice(1, 2).Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "filter_after_slice",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				comparator, err := lib.ReaderSchema.Comparator(Asc("name"))
				require.NoError(t, err)
				filter, err := lib.ReaderSchema.Filter(C("status", "active"))
				require.NoError(t, err)

				sorted, err := GivenLazyReaders(t, session, lib).SortBy(ctx, comparator)
				require.NoError(t, err)
				filtered, err := sorted.Slice(0, 3).Filter(ctx, filter)
				require.NoError(t, err)
				_, err = filtered.Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "count_of_window",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				_, err := GivenLazyReaders(t, session, lib).Slice(2, 3).Count(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "empty_window",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				_, err := GivenLazyReaders(t, session, lib).Slice(0, 0).Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "ranges_and_dates",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
				filter, err := lib.ReaderSchema.Filter(
					C("age", Range[int]{From: Ptr(30), To: Ptr(50)}),
					C("joined", Range[time.Time]{From: &from}),
					C("neverVisited", true),
				)
				require.NoError(t, err)

				_, _, err = GivenLazyReaders(t, session, lib).FindOne(ctx, filter)
				require.NoError(t, err)
			},
		},
		{
			name:    "books_with_author",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				filter, err := lib.BookSchema.Filter(C("title", "Guards"))
				require.NoError(t, err)
				comparator, err := lib.BookSchema.Comparator(Desc("published"))
				require.NoError(t, err)

				books, err := GivenLazyBooks(t, session, lib).With(fixtures.AuthorAssoc)
				require.NoError(t, err)
				filtered, err := books.Filter(ctx, filter)
				require.NoError(t, err)
				sorted, err := filtered.SortBy(ctx, comparator)
				require.NoError(t, err)
				_, err = sorted.Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "books_owned_by_reader",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				borrowed, err := OwnedBy(session, lib.BookKind, "borrower_id", adaID)
				require.NoError(t, err)
				_, err = borrowed.Count(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "sum_of_pages",
			dialect: fixtures.DialectPostgres,
			run: func(t *testing.T, ctx context.Context, session Session) {
				filter, err := lib.BookSchema.Filter(C("genre", "scifi"))
				require.NoError(t, err)
				scifi, err := GivenLazyBooks(t, session, lib).Filter(ctx, filter)
				require.NoError(t, err)

				_, err = Fold(ctx, scifi, SumOf("pages", pagesOf))
				require.NoError(t, err)
			},
		},
		{
			name:    "sqlite_open_window",
			dialect: fixtures.DialectSQLite,
			run: func(t *testing.T, ctx context.Context, session Session) {
				filter, err := lib.ReaderSchema.Filter(C("name", "Lo"))
				require.NoError(t, err)
				filtered, err := GivenLazyReaders(t, session, lib).Filter(ctx, filter)
				require.NoError(t, err)
				_, err = filtered.Slice(4, -1).Collect(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "sqlite_empty_window_with_offset",
			dialect: fixtures.DialectSQLite,
			run: func(t *testing.T, ctx context.Context, session Session) {
				_, err := GivenLazyReaders(t, session, lib).Slice(1, 0).Count(ctx)
				require.NoError(t, err)
			},
		},
		{
			name:    "sqlite_fixed_width_times",
			dialect: fixtures.DialectSQLite,
			run: func(t *testing.T, ctx context.Context, session Session) {
				from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
				filter, err := lib.ReaderSchema.Filter(
					C("age", Range[int]{From: Ptr(30), To: Ptr(50)}),
					C("joined", Range[time.Time]{From: &from}),
				)
				require.NoError(t, err)

				_, _, err = GivenLazyReaders(t, session, lib).FindOne(ctx, filter)
				require.NoError(t, err)
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewRecordingSession(tt.dialect)

			tt.run(t, context.Background(), session)

			require.Len(t, session.Queries(), 1)
			g.Assert(t, tt.name, []byte(session.LastQuery()+"\n"))
		})
	}
}

func Test_Lazy_ShouldNotQuery_WhenOnlyTransformed(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	session := NewRecordingSession(fixtures.DialectPostgres)
	filter, err := lib.ReaderSchema.Filter(C("status", "active"))
	require.NoError(t, err)
	comparator, err := lib.ReaderSchema.Comparator(Asc("name"))
	require.NoError(t, err)

	// act
	filtered, err := GivenLazyReaders(t, session, lib).Filter(ctx, filter)
	require.NoError(t, err)
	sorted, err := filtered.SortBy(ctx, comparator)
	require.NoError(t, err)
	sliced := sorted.Slice(0, 10)

	// assert
	assert.True(t, sliced.IsLazy())
	assert.Empty(t, session.Queries())
}

func Test_Lazy_ShouldPropagateQueryFailures(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	dbErr := errors.New("connection refused")
	session := NewFailingSession(fixtures.DialectPostgres, errors.Join(ErrQueryingEntitiesFailed, dbErr))
	readers := GivenLazyReaders(t, session, lib)
	joinedIn2024 := PredicateFunc[*fixtures.Reader](func(r *fixtures.Reader) bool { return r.Joined.Year() == 2024 })

	// act
	_, collectErr := readers.Collect(ctx)
	_, countErr := readers.Count(ctx)
	_, _, findErr := readers.FindOne(ctx, joinedIn2024)
	filtered, err := readers.Filter(ctx, joinedIn2024)
	require.NoError(t, err)
	_, filterErr := filtered.Collect(ctx)
	_, foldErr := Fold(ctx, GivenLazyBooks(t, session, lib), MaxOf("pages", pagesOf))

	// assert
	for _, err := range []error{collectErr, countErr, findErr, filterErr, foldErr} {
		assert.ErrorIs(t, err, ErrQueryingEntitiesFailed)
		assert.ErrorIs(t, err, dbErr)
	}
}
