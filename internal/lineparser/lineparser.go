// Package lineparser turns delimited text lines into person records and
// imports batches of them into a store.
//
// A line holds five fields in this order:
//
//	LastName | FirstName | Gender | FavoriteColor | DateOfBirth
//	LastName, FirstName, Gender, FavoriteColor, DateOfBirth
//	LastName FirstName Gender FavoriteColor DateOfBirth
//
// The comma/pipe grammar is tried first. The whitespace grammar is only
// considered for lines that contain neither delimiter, so a comma line whose
// fields carry inner spaces is never split on those spaces.
package lineparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

var (
	delimitedLine = regexp.MustCompile(`^[ \t]*` +
		`([^,|]+?)[ \t]*[,|][ \t]*` +
		`([^,|]+?)[ \t]*[,|][ \t]*` +
		`([^,|]+?)[ \t]*[,|][ \t]*` +
		`([^,|]+?)[ \t]*[,|][ \t]*` +
		`(.+?)\s*$`)

	whitespaceLine = regexp.MustCompile(`^\s*` +
		`(\S+?)\s+` +
		`(\S+?)\s+` +
		`(\S+?)\s+` +
		`(\S+?)\s+` +
		`(.+?)\s*$`)
)

// Layouts carrying an explicit offset, tried first
var offsetLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05 -0700",
	"1/2/2006 3:04:05 PM -07:00",
	"1/2/2006 3:04:05 PM -0700",
	"1/2/2006 15:04:05 -07:00",
	time.RFC1123Z,
}

// Layouts without offset; parsed values are taken as UTC
var plainLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// ParseLine converts one line into an unstored person
func ParseLine(line string) (person.Person, error) {
	fields, ok := splitFields(line)
	if !ok {
		return person.Person{}, shared.ErrInvalidArgumentf("malformed line %q: expected five comma, pipe or space separated fields", line)
	}

	dateOfBirth, err := ParseDate(fields[4])
	if err != nil {
		return person.Person{}, err
	}

	return person.New(fields[0], fields[1], fields[2], dateOfBirth, fields[3]), nil
}

// splitFields applies the two grammars in precedence order
func splitFields(line string) ([]string, bool) {
	if m := delimitedLine.FindStringSubmatch(line); m != nil {
		fields := m[1:]
		for i, field := range fields {
			fields[i] = strings.TrimSpace(field)
			if fields[i] == "" {
				return nil, false
			}
		}
		return fields, true
	}
	if strings.ContainsAny(line, ",|") {
		return nil, false
	}
	if m := whitespaceLine.FindStringSubmatch(line); m != nil {
		return m[1:], true
	}
	return nil, false
}

// ParseDate parses a date of birth, preferring layouts with an offset
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range plainLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, shared.ErrInvalidArgumentf("unrecognized date of birth %q", value)
}
