package entitycollection_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper" //nolint:revive
)

func Test_ReflectedProperty_ShouldFindExportedFields(t *testing.T) {
	// arrange
	lib := GivenLibrary(t)
	readers := fixtures.Readers()

	// act
	age, err := ReflectedProperty[*fixtures.Reader]("age", NumberKind)
	require.NoError(t, err)
	reflected, err := NewComparator(lib.ReaderKind, []Property[*fixtures.Reader]{age}, Desc("age"))
	require.NoError(t, err)
	declared, err := NewComparator(lib.ReaderKind, lib.ReaderProperties, Desc("age"))
	require.NoError(t, err)

	// assert
	assert.Equal(t, "age", age.Name())
	assert.Equal(t, NumberKind, age.Kind())

	for _, a := range readers {
		for _, b := range readers {
			want, _ := declared.Compare(a, b)
			got, compareErr := reflected.Compare(a, b)
			assert.NoError(t, compareErr)
			assert.Equal(t, want, got, "%s vs %s", a.Name, b.Name)
		}
	}
}

func Test_ReflectedProperty_ShouldPreferGetters(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)

	displayName, err := ReflectedProperty[*fixtures.Reader]("displayName", StringKind)
	require.NoError(t, err)
	comparator, err := NewComparator(lib.ReaderKind, []Property[*fixtures.Reader]{displayName}, Asc("displayName"))
	require.NoError(t, err)

	// act
	sorted, err := Materialized(fixtures.Readers()...).SortBy(ctx, comparator)
	require.NoError(t, err)

	collected, err := sorted.Collect(ctx)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "Ada Lovelace <ada@example.com>", collected[0].GetDisplayName())
	assert.Equal(t, "Katherine Johnson <katherine@example.com>", collected[len(collected)-1].GetDisplayName())
}

func Test_ReflectedProperty_ShouldTreatNilPointersAsNull(t *testing.T) {
	// arrange
	lastVisit, err := ReflectedProperty[*fixtures.Reader]("lastVisit", DateKind)
	require.NoError(t, err)
	lib := GivenLibrary(t)
	comparator, err := NewComparator(lib.ReaderKind, []Property[*fixtures.Reader]{lastVisit}, Asc("lastVisit"))
	require.NoError(t, err)

	readers := fixtures.Readers()
	ada, grace := readers[0], readers[1] // grace never visited

	// act
	result, err := comparator.Compare(grace, ada)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, -1, result)
}

func Test_ReflectedProperty_ShouldFail_WithInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name     string
		property string
		kind     ValueKind
		wantErr  error
	}{
		{name: "no accessor", property: "shoeSize", kind: NumberKind, wantErr: ErrUnknownProperty},
		{name: "string declared as number", property: "email", kind: NumberKind, wantErr: ErrPropertyKindMismatch},
		{name: "date declared as string", property: "joined", kind: StringKind, wantErr: ErrPropertyKindMismatch},
		{name: "getter declared as date", property: "displayName", kind: DateKind, wantErr: ErrPropertyKindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReflectedProperty[*fixtures.Reader](tt.property, tt.kind)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func Test_ReflectedProperty_ShouldIgnoreMethodsWithSeveralResults(t *testing.T) {
	// act
	_, err := ReflectedProperty[*fixtures.Book]("author", StringKind)

	// assert
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func Test_Property_WithColumn(t *testing.T) {
	// arrange
	property := DateProperty("lastVisit", func(r *fixtures.Reader) *time.Time { return r.LastVisit })

	// act
	renamed := property.WithColumn("last_visit")

	// assert
	assert.Equal(t, "lastVisit", property.Column())
	assert.Equal(t, "last_visit", renamed.Column())
	assert.Equal(t, "lastVisit", renamed.Name())
	assert.Equal(t, DateKind, renamed.Kind())
	assert.Equal(t, "date", renamed.Kind().String())
}
