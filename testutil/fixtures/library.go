package fixtures

import (
	"time"

	"github.com/google/uuid"

	. "github.com/AntonStoeckl/entity-collections-go/entitycollection" //nolint:revive
)

// Table names and aliases of the library schema.
const (
	ReadersTable = "readers"
	BooksTable   = "books"
	AuthorsTable = "authors"
	ReaderAlias  = "r"
	BookAlias    = "b"
	AuthorAssoc  = "author"
)

// ReaderColumns and BookColumns are the root columns in scan order.
var (
	ReaderColumns = []string{"id", "name", "email", "status", "age", "joined", "last_visit"}
	BookColumns   = []string{"id", "title", "genre", "pages", "published", "author_id", "borrower_id"}
)

// Library bundles the declarations of the library domain.
type Library struct {
	ReaderKind       Kind[*Reader]
	ReaderFilters    FilterSchema[*Reader]
	ReaderProperties []Property[*Reader]
	ReaderSchema     Schema[*Reader]

	BookKind       Kind[*Book]
	BookFilters    FilterSchema[*Book]
	BookProperties []Property[*Book]
	BookSchema     Schema[*Book]
}

// NewLibrary declares the reader and book kinds with their filters and sortable properties.
func NewLibrary() (Library, error) {
	var (
		lib Library
		err error
	)

	if lib.ReaderKind, err = NewReaderKind(); err != nil {
		return Library{}, err
	}

	if lib.ReaderFilters, err = NewFilterSchema(lib.ReaderKind, ReaderRules()...); err != nil {
		return Library{}, err
	}

	lib.ReaderProperties = ReaderProperties()

	if lib.ReaderSchema, err = NewSchema(lib.ReaderFilters, lib.ReaderProperties...); err != nil {
		return Library{}, err
	}

	if lib.BookKind, err = NewBookKind(); err != nil {
		return Library{}, err
	}

	if lib.BookFilters, err = NewFilterSchema(lib.BookKind, BookRules()...); err != nil {
		return Library{}, err
	}

	lib.BookProperties = BookProperties()

	if lib.BookSchema, err = NewSchema(lib.BookFilters, lib.BookProperties...); err != nil {
		return Library{}, err
	}

	return lib, nil
}

/***** readers *****/

func NewReaderKind() (Kind[*Reader], error) {
	return NewKind(
		ReadersTable,
		ReaderColumns,
		func() *Reader { return &Reader{} },
		func(r *Reader) []any {
			return []any{
				&r.ID, &r.Name, &r.Email, &r.Status, &r.Age,
				timeColumn{dest: &r.Joined},
				timeColumn{nullable: &r.LastVisit},
			}
		},
		WithAlias[*Reader](ReaderAlias),
		WithIdentity(func(r *Reader) any { return r.ID }),
	)
}

// ReaderRules are the criteria readers can be filtered by:
// id, status, email (equality), statuses (one of), name (substring), age (range),
// joined (date range) and neverVisited (null check on last_visit).
func ReaderRules() []Rule[*Reader] {
	return []Rule[*Reader]{
		Equals("id", func(r *Reader) *uuid.UUID { return &r.ID }),
		Equals("status", func(r *Reader) *string { return &r.Status }),
		Equals("email", func(r *Reader) *string { return &r.Email }),
		OneOf("statuses", func(r *Reader) *string { return &r.Status }).WithColumn("status"),
		Contains("name", func(r *Reader) *string { return &r.Name }),
		Between("age", func(r *Reader) *int { return r.Age }),
		BetweenDates("joined", func(r *Reader) *time.Time { return &r.Joined }),
		IsNull("neverVisited", func(r *Reader) *time.Time { return r.LastVisit }).WithColumn("last_visit"),
	}
}

// ReaderProperties are the sortable properties of readers.
func ReaderProperties() []Property[*Reader] {
	return []Property[*Reader]{
		StringProperty("name", func(r *Reader) *string { return &r.Name }),
		StringProperty("email", func(r *Reader) *string { return &r.Email }),
		StringProperty("status", func(r *Reader) *string { return &r.Status }),
		NumberProperty("age", func(r *Reader) *int { return r.Age }),
		DateProperty("joined", func(r *Reader) *time.Time { return &r.Joined }),
		DateProperty("lastVisit", func(r *Reader) *time.Time { return r.LastVisit }).WithColumn("last_visit"),
	}
}

/***** books *****/

func NewBookKind() (Kind[*Book], error) {
	return NewKind(
		BooksTable,
		BookColumns,
		func() *Book { return &Book{} },
		func(b *Book) []any {
			return []any{
				&b.ID, &b.Title, &b.Genre, &b.Pages,
				timeColumn{nullable: &b.Published},
				&b.AuthorID, &b.BorrowerID,
			}
		},
		WithAlias[*Book](BookAlias),
		WithIdentity(func(b *Book) any { return b.ID }),
		WithAssociation(ToOne(
			AuthorAssoc,
			AuthorsTable,
			"author_id",
			"id",
			[]string{"id", "name"},
			func(b *Book) []any { return []any{&b.joinedAuthorID, &b.joinedAuthorName} },
		)),
	)
}

// BookRules are the criteria books can be filtered by.
func BookRules() []Rule[*Book] {
	return []Rule[*Book]{
		Equals("genre", func(b *Book) *string { return &b.Genre }),
		Equals("authorID", func(b *Book) *uuid.UUID { return &b.AuthorID }).WithColumn("author_id"),
		Equals("borrowerID", func(b *Book) *uuid.UUID { return b.BorrowerID }).WithColumn("borrower_id"),
		IsNull("available", func(b *Book) *uuid.UUID { return b.BorrowerID }).WithColumn("borrower_id"),
		Between("pages", func(b *Book) *int { return b.Pages }),
		Contains("title", func(b *Book) *string { return &b.Title }),
	}
}

// BookProperties are the sortable properties of books.
func BookProperties() []Property[*Book] {
	return []Property[*Book]{
		StringProperty("title", func(b *Book) *string { return &b.Title }),
		StringProperty("genre", func(b *Book) *string { return &b.Genre }),
		NumberProperty("pages", func(b *Book) *int { return b.Pages }),
		DateProperty("published", func(b *Book) *time.Time { return b.Published }),
	}
}
