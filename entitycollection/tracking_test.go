package entitycollection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	"github.com/AntonStoeckl/entity-collections-go/entitycollection/sqlengine"
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper" //nolint:revive
)

func Test_All_ShouldReturnTheTrackedInstance_WhenNotDetaching(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	tracker := sqlengine.NewIdentityMap()
	readers := GivenLazyReaders(t, GivenSQLiteSession(t, sqlengine.WithTracker(tracker)), lib)

	// act
	first, err := readers.Collect(ctx)
	require.NoError(t, err)
	second, err := readers.Collect(ctx)
	require.NoError(t, err)

	// assert
	assert.False(t, readers.IsDetaching())
	assert.Equal(t, 6, tracker.Len())
	require.Len(t, second, len(first))

	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

func Test_All_ShouldShareInstancesAcrossCollectionsOfTheSameSession(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	readers := GivenLazyReaders(t, GivenSQLiteSession(t), lib)
	byEmail, err := lib.ReaderSchema.Filter(C("email", "grace@example.com"))
	require.NoError(t, err)

	// act
	all, err := readers.Collect(ctx)
	require.NoError(t, err)
	grace, found, err := readers.FindOne(ctx, byEmail)
	require.NoError(t, err)

	// assert
	assert.True(t, found)
	assert.Same(t, all[1], grace)
}

func Test_All_ShouldReturnFreshInstances_WhenDetaching(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	tracker := sqlengine.NewIdentityMap()
	readers := GivenLazyReaders(t, GivenSQLiteSession(t, sqlengine.WithTracker(tracker)), lib).EnableDetaching()

	// act
	first, err := readers.Collect(ctx)
	require.NoError(t, err)
	second, err := readers.Collect(ctx)
	require.NoError(t, err)

	// assert
	assert.True(t, readers.IsDetaching())
	assert.Zero(t, tracker.Len())
	require.Len(t, second, len(first))

	for i := range first {
		assert.NotSame(t, first[i], second[i])
		assert.Equal(t, first[i], second[i])
	}
}

func Test_EnableDetaching_ShouldDetachTrackedInstances(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	tracker := sqlengine.NewIdentityMap()
	readers := GivenLazyReaders(t, GivenSQLiteSession(t, sqlengine.WithTracker(tracker)), lib)

	tracked, err := readers.Collect(ctx)
	require.NoError(t, err)

	// act
	detached, err := readers.EnableDetaching().Collect(ctx)
	require.NoError(t, err)
	fresh, err := readers.Collect(ctx)
	require.NoError(t, err)

	// assert
	assert.Same(t, tracked[0], detached[0])
	assert.NotSame(t, tracked[0], fresh[0])
	assert.True(t, tracker.Contains(lib.ReaderKind.Name(), fixtures.AdaID))
	assert.False(t, readers.EnableDetaching().DisableDetaching().IsDetaching())
}

func Test_Detaching_ShouldBeIgnored_WhenMaterialized(t *testing.T) {
	// arrange
	readers := Materialized(fixtures.Readers()...)

	// act
	detaching := readers.EnableDetaching()

	// assert
	assert.False(t, detaching.IsDetaching())
}

func Test_Detaching_ShouldSurviveTransformations(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := GivenLibrary(t)
	readers := GivenLazyReaders(t, GivenSQLiteSession(t), lib).EnableDetaching()
	active, err := lib.ReaderSchema.Filter(C("status", "active"))
	require.NoError(t, err)

	// act
	filtered, err := readers.Filter(ctx, active)
	require.NoError(t, err)

	// assert
	assert.True(t, filtered.IsDetaching())
	assert.True(t, filtered.Slice(0, 1).IsDetaching())
}
