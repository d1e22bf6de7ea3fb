package entitycollection_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper" //nolint:revive
)

func Test_ParseOperation(t *testing.T) {
	tests := []struct {
		method       string
		arg          any
		wantVerb     Verb
		wantProperty string
		wantArg      any
	}{
		{method: "findByStatus", arg: "active", wantVerb: VerbFindBy, wantProperty: "status", wantArg: "active"},
		{method: "findForEmail", arg: "ada@example.com", wantVerb: VerbFindBy, wantProperty: "email", wantArg: "ada@example.com"},
		{method: "findByID", arg: "x", wantVerb: VerbFindBy, wantProperty: "id", wantArg: "x"},
		{method: "acceptByNeverVisited", arg: true, wantVerb: VerbAcceptBy, wantProperty: "neverVisited", wantArg: true},
		{method: "acceptForGenre", arg: "scifi", wantVerb: VerbAcceptBy, wantProperty: "genre", wantArg: "scifi"},
		{method: "sortByAge", arg: "desc", wantVerb: VerbSortBy, wantProperty: "age", wantArg: Descending},
		{method: "sortByLastVisit", arg: nil, wantVerb: VerbSortBy, wantProperty: "lastVisit", wantArg: Ascending},
		{method: "sortByURLPath", arg: Descending, wantVerb: VerbSortBy, wantProperty: "urlPath", wantArg: Descending},
		{method: "withAuthor", arg: nil, wantVerb: VerbWith, wantProperty: "author", wantArg: nil},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			op, err := ParseOperation(tt.method, tt.arg)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantVerb, op.Verb())
			assert.Equal(t, tt.wantProperty, op.Property())
			assert.Equal(t, tt.wantArg, op.Arg())
		})
	}
}

func Test_ParseOperation_ShouldFail_WithUnsupportedMethods(t *testing.T) {
	for _, method := range []string{"", "count", "findBy", "findbystatus", "sortBy", "without", "deleteByStatus"} {
		t.Run(method, func(t *testing.T) {
			_, err := ParseOperation(method, nil)

			assert.ErrorIs(t, err, ErrUnsupportedOperation)
		})
	}
}

func Test_ParseOperation_ShouldFail_WithInvalidSortDirection(t *testing.T) {
	// act
	_, err := ParseOperation("sortByAge", 1)

	// assert
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func Test_Operation_String(t *testing.T) {
	assert.Equal(t, "findBy(status)", FindBy("status", "active").String())
	assert.Equal(t, "acceptBy(genre)", AcceptBy("genre", "scifi").String())
	assert.Equal(t, "sortBy(age)", SortByProperty("age", Descending).String())
	assert.Equal(t, "with(author)", With("author").String())
	assert.Equal(t, "Verb(0)", Operation{}.Verb().String())
}

func Test_Call_ShouldDispatchToMaterializedAndLazyCollections(t *testing.T) {
	ctx := context.Background()
	lib := GivenLibrary(t)
	session := GivenSQLiteSession(t)

	collections := map[string]Collection[*fixtures.Reader]{
		"lazy":         GivenLazyReaders(t, session, lib),
		"materialized": Materialized(fixtures.Readers()...),
	}

	for mode, readers := range collections {
		t.Run(mode, func(t *testing.T) {
			found, err := readers.Call(ctx, lib.ReaderSchema, "findByEmail", "alan@example.com")
			require.NoError(t, err)
			assert.True(t, found.Found)
			assert.Equal(t, fixtures.AlanID, found.Entity.ID)

			missing, err := readers.Call(ctx, lib.ReaderSchema, "findByEmail", "nobody@example.com")
			require.NoError(t, err)
			assert.False(t, missing.Found)
			assert.Nil(t, missing.Entity)

			accepted, err := readers.Call(ctx, lib.ReaderSchema, "acceptByStatus", "active")
			require.NoError(t, err)
			sorted, err := accepted.Collection.Call(ctx, lib.ReaderSchema, "sortByJoined", "desc")
			require.NoError(t, err)
			assert.Equal(t, mode == "lazy", sorted.Collection.IsLazy())
			assert.Equal(
				t,
				[]uuid.UUID{fixtures.BarbaraID, fixtures.AdaID, fixtures.GraceID, fixtures.KatherineID},
				CollectIDs(t, ctx, sorted.Collection, ReaderID),
			)
		})
	}
}

func Test_Call_ShouldFail_WithUnknownPropertiesOrMethods(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	readers := Materialized(fixtures.Readers()...)

	// act
	_, unknownCriterion := readers.Call(ctx, lib.ReaderSchema, "findByShoeSize", 42)
	_, unknownProperty := readers.Call(ctx, lib.ReaderSchema, "sortByShoeSize", nil)
	_, unsupported := readers.Call(ctx, lib.ReaderSchema, "groupByStatus", nil)
	_, noFactory := readers.Call(ctx, nil, "findByStatus", "active")

	// assert
	assert.ErrorIs(t, unknownCriterion, ErrUnknownCriterion)
	assert.ErrorIs(t, unknownProperty, ErrUnknownProperty)
	assert.ErrorIs(t, unsupported, ErrUnsupportedOperation)
	assert.ErrorIs(t, noFactory, ErrInvalidArgument)
}

func Test_Dispatch_With_ShouldJoinTheAssociationOnLazyCollections(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	books := GivenLazyBooks(t, GivenSQLiteSession(t), lib)

	// act
	outcome, err := books.Dispatch(ctx, nil, With(fixtures.AuthorAssoc))
	require.NoError(t, err)
	found, err := outcome.Collection.Dispatch(ctx, lib.BookSchema, FindBy("title", "Kindred"))

	// assert
	assert.NoError(t, err)
	require.True(t, found.Found)
	author, hasAuthor := found.Entity.Author()
	assert.True(t, hasAuthor)
	assert.Equal(t, "Octavia E. Butler", author.Name)
}

func Test_Dispatch_ShouldFail_WithUnknownVerb(t *testing.T) {
	// act
	_, err := Materialized(fixtures.Readers()...).Dispatch(context.Background(), GivenLibrary(t).ReaderSchema, Operation{})

	// assert
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}
