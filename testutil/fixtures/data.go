package fixtures

import (
	"time"

	"github.com/google/uuid"
)

var idNamespace = uuid.MustParse("6f1c3a52-0c4e-4d8e-9a57-1b2f6c0d9e41")

func fixtureID(name string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(name))
}

// Reader IDs of the data set.
var (
	AdaID       = fixtureID("reader:ada")
	GraceID     = fixtureID("reader:grace")
	AlanID      = fixtureID("reader:alan")
	KatherineID = fixtureID("reader:katherine")
	EdsgerID    = fixtureID("reader:edsger")
	BarbaraID   = fixtureID("reader:barbara")
)

// Author IDs of the data set. UnknownAuthorID is referenced by a book but has no row.
var (
	LeGuinID        = fixtureID("author:le-guin")
	ButlerID        = fixtureID("author:butler")
	PratchettID     = fixtureID("author:pratchett")
	UnknownAuthorID = fixtureID("author:unknown")
)

// Book IDs of the data set.
var (
	LeftHandOfDarknessID = fixtureID("book:left-hand-of-darkness")
	DispossessedID       = fixtureID("book:dispossessed")
	WizardOfEarthseaID   = fixtureID("book:wizard-of-earthsea")
	KindredID            = fixtureID("book:kindred")
	ParableOfTheSowerID  = fixtureID("book:parable-of-the-sower")
	GuardsGuardsID       = fixtureID("book:guards-guards")
	SmallGodsID          = fixtureID("book:small-gods")
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// Readers returns a fresh copy of the readers data set, in insertion order.
// Ages are unique, Katherine has no age, Grace and Edsger never visited.
func Readers() []*Reader {
	return []*Reader{
		{
			ID: AdaID, Name: "Ada Lovelace", Email: "ada@example.com", Status: "active",
			Age: ptr(36), Joined: at(2024, time.January, 15, 9, 0), LastVisit: ptr(at(2024, time.June, 1, 12, 0)),
		},
		{
			ID: GraceID, Name: "Grace Hopper", Email: "grace@example.com", Status: "active",
			Age: ptr(85), Joined: at(2023, time.November, 2, 14, 30),
		},
		{
			ID: AlanID, Name: "Alan Turing", Email: "alan@example.com", Status: "suspended",
			Age: ptr(41), Joined: at(2024, time.March, 20, 8, 15), LastVisit: ptr(at(2024, time.May, 10, 18, 45)),
		},
		{
			ID: KatherineID, Name: "Katherine Johnson", Email: "katherine@example.com", Status: "active",
			Joined: at(2022, time.July, 4, 10, 0), LastVisit: ptr(at(2024, time.February, 29, 9, 30)),
		},
		{
			ID: EdsgerID, Name: "Edsger Dijkstra", Email: "edsger@example.com", Status: "inactive",
			Age: ptr(72), Joined: at(2023, time.May, 17, 16, 0),
		},
		{
			ID: BarbaraID, Name: "Barbara Liskov", Email: "barbara@example.com", Status: "active",
			Age: ptr(29), Joined: at(2024, time.August, 8, 8, 8), LastVisit: ptr(at(2024, time.September, 1, 7, 0)),
		},
	}
}

// Authors returns the authors data set.
func Authors() []Author {
	return []Author{
		{ID: LeGuinID, Name: "Ursula K. Le Guin"},
		{ID: ButlerID, Name: "Octavia E. Butler"},
		{ID: PratchettID, Name: "Terry Pratchett"},
	}
}

// Books returns a fresh copy of the books data set, in insertion order.
// Page counts are unique, Small Gods has neither pages nor a publication date and an author without a row.
func Books() []*Book {
	return []*Book{
		{
			ID: LeftHandOfDarknessID, Title: "The Left Hand of Darkness", Genre: "scifi",
			Pages: ptr(304), Published: ptr(at(1969, time.March, 1, 0, 0)), AuthorID: LeGuinID, BorrowerID: ptr(AdaID),
		},
		{
			ID: DispossessedID, Title: "The Dispossessed", Genre: "scifi",
			Pages: ptr(387), Published: ptr(at(1974, time.May, 1, 0, 0)), AuthorID: LeGuinID,
		},
		{
			ID: WizardOfEarthseaID, Title: "A Wizard of Earthsea", Genre: "fantasy",
			Pages: ptr(183), Published: ptr(at(1968, time.November, 1, 0, 0)), AuthorID: LeGuinID, BorrowerID: ptr(GraceID),
		},
		{
			ID: KindredID, Title: "Kindred", Genre: "historical",
			Pages: ptr(264), Published: ptr(at(1979, time.June, 1, 0, 0)), AuthorID: ButlerID, BorrowerID: ptr(AdaID),
		},
		{
			ID: ParableOfTheSowerID, Title: "Parable of the Sower", Genre: "scifi",
			Pages: ptr(345), Published: ptr(at(1993, time.October, 1, 0, 0)), AuthorID: ButlerID,
		},
		{
			ID: GuardsGuardsID, Title: "Guards! Guards!", Genre: "fantasy",
			Pages: ptr(416), Published: ptr(at(1989, time.November, 1, 0, 0)), AuthorID: PratchettID, BorrowerID: ptr(AdaID),
		},
		{
			ID: SmallGodsID, Title: "Small Gods", Genre: "fantasy",
			AuthorID: UnknownAuthorID,
		},
	}
}
