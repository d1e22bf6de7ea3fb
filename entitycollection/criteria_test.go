package entitycollection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	. "github.com/AntonStoeckl/entity-collections-go/testutil/helper"  //nolint:revive
)

func Test_ParseCriteriaJSON_ShouldKeepTheDocumentOrder(t *testing.T) {
	// arrange
	data := []byte(`{"status": "active", "age": 36, "statuses": ["active", "inactive"], "neverVisited": false}`)

	// act
	criteria, err := ParseCriteriaJSON(data)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"status", "age", "statuses", "neverVisited"}, criteria.Names())
	assert.Equal(t, float64(36), criteria[1].Value)
	assert.Equal(t, []any{"active", "inactive"}, criteria[2].Value)
	assert.Equal(t, false, criteria[3].Value)
}

func Test_ParseCriteriaJSON_ShouldReplaceRepeatedKeysInPlace(t *testing.T) {
	// arrange
	data := []byte(`{"status": "active", "email": "ada@example.com", "status": "inactive"}`)

	// act
	criteria, err := ParseCriteriaJSON(data)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, Criteria{C("status", "inactive"), C("email", "ada@example.com")}, criteria)
}

func Test_ParseCriteriaJSON_ShouldFeedFilterSchemas(t *testing.T) {
	// arrange
	lib := GivenLibrary(t)
	criteria, err := ParseCriteriaJSON([]byte(`{"statuses": ["active"], "neverVisited": true}`))
	require.NoError(t, err)

	// act
	filter, err := lib.ReaderFilters.FromCriteria(criteria...)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, criteria, filter.Criteria())
}

func Test_ParseCriteriaJSON_ShouldFail_WithMalformedInput(t *testing.T) {
	tests := map[string]string{
		"not an object":   `["status"]`,
		"truncated":       `{"status": "act`,
		"missing value":   `{"status": }`,
		"empty document":  ``,
		"trailing commas": `{"status": "active",}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCriteriaJSON([]byte(data))

			assert.ErrorIs(t, err, ErrMalformedJSON)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func Test_ParseOrderJSON_ShouldKeepTheDocumentOrder(t *testing.T) {
	// arrange
	data := []byte(`{"status": "asc", "lastVisit": "DESC", "name": "Asc"}`)

	// act
	order, err := ParseOrderJSON(data)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []OrderItem{Asc("status"), Desc("lastVisit"), Asc("name")}, order)
}

func Test_ParseOrderJSON_ShouldFail_WithInvalidDirections(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "unknown direction", data: `{"name": "up"}`, wantErr: ErrInvalidDirection},
		{name: "direction is not a string", data: `{"name": 1}`, wantErr: ErrMalformedJSON},
		{name: "not an object", data: `"name"`, wantErr: ErrMalformedJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrderJSON([]byte(tt.data))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_ParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{input: "asc", want: Ascending},
		{input: "DESC", want: Descending},
		{input: " Desc ", want: Descending},
		{input: "", wantErr: true},
		{input: "descending", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			direction, err := ParseDirection(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDirection)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, direction)
		})
	}
}

func Test_Criteria_With_ShouldNotModifyTheReceiver(t *testing.T) {
	// arrange
	original := Criteria{C("status", "active"), C("name", "A")}

	// act
	replaced := original.With("status", "inactive")
	appended := original.With("age", Range[int]{From: Ptr(18)})

	// assert
	assert.Equal(t, Criteria{C("status", "active"), C("name", "A")}, original)
	assert.Equal(t, Criteria{C("status", "inactive"), C("name", "A")}, replaced)
	assert.Equal(t, []string{"status", "name", "age"}, appended.Names())
}
