package entitycollection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
	"github.com/AntonStoeckl/entity-collections-go/testutil/fixtures"
)

func newAuthor() *fixtures.Author { return &fixtures.Author{} }

func authorDest(a *fixtures.Author) []any { return []any{&a.ID, &a.Name} }

func Test_NewKind_ShouldDeclareTheRootTable(t *testing.T) {
	// act
	kind, err := NewKind(fixtures.AuthorsTable, []string{"id", "name"}, newAuthor, authorDest)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "authors", kind.Table())
	assert.Equal(t, "authors", kind.Alias())
	assert.Equal(t, []string{"id", "name"}, kind.Columns())
	assert.Equal(t, "*fixtures.Author", kind.Name())
	assert.True(t, kind.Accepts(&fixtures.Author{}))
	assert.False(t, kind.Accepts(nil))
}

func Test_NewKind_ShouldFail_WithInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []string
		factory func() *fixtures.Author
		dest    func(*fixtures.Author) []any
		options []KindOption[*fixtures.Author]
		wantErr error
	}{
		{name: "empty table", table: "", columns: []string{"id", "name"}, factory: newAuthor, dest: authorDest, wantErr: ErrInvalidKind},
		{name: "no columns", table: "authors", columns: nil, factory: newAuthor, dest: authorDest, wantErr: ErrInvalidKind},
		{name: "no factory", table: "authors", columns: []string{"id", "name"}, factory: nil, dest: authorDest, wantErr: ErrInvalidKind},
		{
			name:    "factory returns nil",
			table:   "authors",
			columns: []string{"id", "name"},
			factory: func() *fixtures.Author { return nil },
			dest:    func(*fixtures.Author) []any { return []any{nil, nil} },
			wantErr: ErrInvalidKind,
		},
		{name: "too few destinations", table: "authors", columns: []string{"id", "name", "born"}, factory: newAuthor, dest: authorDest, wantErr: ErrInvalidKind},
		{name: "duplicate column", table: "authors", columns: []string{"id", "id"}, factory: newAuthor, dest: authorDest, wantErr: ErrDuplicateDeclaration},
		{name: "empty column", table: "authors", columns: []string{"id", ""}, factory: newAuthor, dest: authorDest, wantErr: ErrInvalidKind},
		{
			name:    "empty alias",
			table:   "authors",
			columns: []string{"id", "name"},
			factory: newAuthor,
			dest:    authorDest,
			options: []KindOption[*fixtures.Author]{WithAlias[*fixtures.Author]("")},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "nil identity",
			table:   "authors",
			columns: []string{"id", "name"},
			factory: newAuthor,
			dest:    authorDest,
			options: []KindOption[*fixtures.Author]{WithIdentity[*fixtures.Author](nil)},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKind(tt.table, tt.columns, tt.factory, tt.dest, tt.options...)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func Test_NewKind_ShouldValidateAssociations(t *testing.T) {
	joined := func(*fixtures.Book) []any { return []any{new(string)} }

	tests := []struct {
		name         string
		associations []Association[*fixtures.Book]
		wantErr      error
	}{
		{
			name: "duplicate association",
			associations: []Association[*fixtures.Book]{
				ToOne("author", fixtures.AuthorsTable, "author_id", "id", []string{"name"}, joined),
				ToOne("author", fixtures.AuthorsTable, "author_id", "id", []string{"name"}, joined),
			},
			wantErr: ErrDuplicateDeclaration,
		},
		{
			name: "unknown join column",
			associations: []Association[*fixtures.Book]{
				ToOne("author", fixtures.AuthorsTable, "writer_id", "id", []string{"name"}, joined),
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "clashes with the root alias",
			associations: []Association[*fixtures.Book]{
				ToOne(fixtures.BookAlias, fixtures.AuthorsTable, "author_id", "id", []string{"name"}, joined),
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "mismatching scan destinations",
			associations: []Association[*fixtures.Book]{
				ToOne("author", fixtures.AuthorsTable, "author_id", "id", []string{"id", "name"}, joined),
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "no table",
			associations: []Association[*fixtures.Book]{
				ToOne("author", "", "author_id", "id", []string{"name"}, joined),
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := []KindOption[*fixtures.Book]{WithAlias[*fixtures.Book](fixtures.BookAlias)}
			for _, association := range tt.associations {
				options = append(options, WithAssociation(association))
			}

			_, err := NewKind(
				fixtures.BooksTable,
				fixtures.BookColumns,
				func() *fixtures.Book { return &fixtures.Book{} },
				func(b *fixtures.Book) []any { return make([]any, len(fixtures.BookColumns)) },
				options...,
			)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_Kind_Association_ShouldReturnRegisteredAssociations(t *testing.T) {
	// arrange
	kind, err := fixtures.NewBookKind()
	require.NoError(t, err)

	// act
	author, found := kind.Association(fixtures.AuthorAssoc)
	_, missing := kind.Association("publisher")

	// assert
	assert.True(t, found)
	assert.Equal(t, "author", author.Name())
	assert.False(t, missing)
}
