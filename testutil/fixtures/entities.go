package fixtures

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reader is a registered reader of the library.
type Reader struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Status    string
	Age       *int
	Joined    time.Time
	LastVisit *time.Time
}

// GetDisplayName returns the name and email of the reader.
func (r *Reader) GetDisplayName() string {
	return r.Name + " <" + r.Email + ">"
}

// Author wrote books.
type Author struct {
	ID   uuid.UUID
	Name string
}

// Book is a book of the library, optionally lent to a reader.
type Book struct {
	ID         uuid.UUID
	Title      string
	Genre      string
	Pages      *int
	Published  *time.Time
	AuthorID   uuid.UUID
	BorrowerID *uuid.UUID

	joinedAuthorID   uuid.NullUUID
	joinedAuthorName sql.NullString
}

// Author returns the author loaded with the "author" association, if there was one.
func (b *Book) Author() (Author, bool) {
	if !b.joinedAuthorID.Valid {
		return Author{}, false
	}

	return Author{ID: b.joinedAuthorID.UUID, Name: b.joinedAuthorName.String}, true
}

// IsLent reports whether the book is currently lent to a reader.
func (b *Book) IsLent() bool {
	return b.BorrowerID != nil
}

// timeColumn scans TIMESTAMP columns. go-sqlite3 hands out time.Time only for columns
// whose declared type it can see, otherwise the stored text.
type timeColumn struct {
	dest     *time.Time
	nullable **time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (c timeColumn) Scan(src any) error {
	var (
		t   time.Time
		err error
	)

	switch v := src.(type) {
	case nil:
		if c.nullable == nil {
			return errors.New("cannot scan NULL into a non-nullable time")
		}

		*c.nullable = nil

		return nil

	case time.Time:
		t = v

	case string:
		t, err = parseTime(v)

	case []byte:
		t, err = parseTime(string(v))

	default:
		return fmt.Errorf("cannot scan %T into a time", src)
	}

	if err != nil {
		return err
	}

	t = t.UTC()

	if c.nullable != nil {
		*c.nullable = &t
	} else {
		*c.dest = t
	}

	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable time %q", s)
}
