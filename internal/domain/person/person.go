package person

import (
	"fmt"
	"time"
)

// DateLayout renders a date of birth in the canonical text form
const DateLayout = "1/2/2006"

// ID identifies a stored person. Zero means not yet assigned.
type ID int

// Unassigned is the id carried by records that have not been stored yet
const Unassigned ID = 0

// IsAssigned reports whether the id was handed out by a repository
func (id ID) IsAssigned() bool {
	return id != Unassigned
}

// Person is one record: name, gender, date of birth and favorite color
type Person struct {
	ID            ID        `json:"id"`
	LastName      string    `json:"lastName"`
	FirstName     string    `json:"firstName"`
	Gender        string    `json:"gender"`
	DateOfBirth   time.Time `json:"dateOfBirth"`
	FavoriteColor string    `json:"favoriteColor"`
}

// New creates an unstored person with id 0
func New(lastName, firstName, gender string, dateOfBirth time.Time, favoriteColor string) Person {
	return Person{
		ID:            Unassigned,
		LastName:      lastName,
		FirstName:     firstName,
		Gender:        gender,
		DateOfBirth:   dateOfBirth,
		FavoriteColor: favoriteColor,
	}
}

// WithID returns a copy of p carrying id
func (p Person) WithID(id ID) Person {
	p.ID = id
	return p
}

// Equal reports whether all six fields match. Dates compare as instants.
func (p Person) Equal(other Person) bool {
	return p.ID == other.ID &&
		p.LastName == other.LastName &&
		p.FirstName == other.FirstName &&
		p.Gender == other.Gender &&
		p.DateOfBirth.Equal(other.DateOfBirth) &&
		p.FavoriteColor == other.FavoriteColor
}

// String renders "last | first | gender | M/D/YYYY | color"
func (p Person) String() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s",
		p.LastName, p.FirstName, p.Gender, p.DateOfBirth.Format(DateLayout), p.FavoriteColor)
}
