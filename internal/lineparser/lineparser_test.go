package lineparser

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

const testDate = "1987-01-24T00:00:00-05:00"

func TestParseLine(t *testing.T) {
	want := person.New("last", "first", "gender",
		time.Date(1987, time.January, 24, 0, 0, 0, 0, time.FixedZone("", -5*60*60)), "favoriteColor")

	lines := []string{
		fmt.Sprintf("last,first,gender,favoriteColor,%s", testDate),
		fmt.Sprintf("last, first, gender, favoriteColor, %s", testDate),
		fmt.Sprintf("last|first|gender|favoriteColor|%s", testDate),
		fmt.Sprintf("last| first| gender| favoriteColor| %s", testDate),
		fmt.Sprintf("last first gender favoriteColor %s", testDate),
		fmt.Sprintf("last  first  gender  favoriteColor  %s", testDate),
		fmt.Sprintf("  last\tfirst\tgender\tfavoriteColor\t%s  ", testDate),
		fmt.Sprintf("last , first | gender , favoriteColor | %s", testDate),
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			got, err := ParseLine(line)

			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %+v", got)
			assert.Equal(t, "last | first | gender | 1/24/1987 | favoriteColor", got.String())
		})
	}
}

func TestParseLine_FieldsWithSpaces(t *testing.T) {
	want := person.New("last name", "first name", "my gender",
		time.Date(1987, time.January, 24, 5, 0, 0, 0, time.UTC), "favorite Color")

	lines := []string{
		fmt.Sprintf("last name,first name,my gender,favorite Color,%s", testDate),
		fmt.Sprintf("last name , first name , my gender , favorite Color , %s", testDate),
		fmt.Sprintf("last name|first name|my gender|favorite Color|%s", testDate),
		fmt.Sprintf("last name | first name | my gender | favorite Color | %s", testDate),
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			got, err := ParseLine(line)

			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %+v", got)
		})
	}
}

func TestParseLine_Failures(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "wrong delimiter", line: fmt.Sprintf("last-first-gender-favoriteColor-%s", testDate)},
		{name: "short line", line: "last-first-gender-favoriteColor"},
		{name: "four comma fields", line: "last,first,gender,favoriteColor"},
		{name: "four space fields", line: "last first gender favoriteColor"},
		{name: "bad date comma", line: "last,first,gender,favoriteColor,abasd"},
		{name: "bad date pipe", line: "last| first| gender| favoriteColor| abasd"},
		{name: "bad date space", line: "last  first  gender  favoriteColor  abasd"},
		{name: "empty", line: ""},
		{name: "blank comma field", line: "last, ,gender,favoriteColor,1987-01-24"},
		{name: "blank pipe field", line: "last | first |   | favoriteColor | 1987-01-24"},
		{name: "blank date field", line: "last,first,gender,favoriteColor, \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)

			require.Error(t, err)
			assert.True(t, shared.IsInvalidArgument(err))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "1987-01-24T00:00:00-05:00", want: time.Date(1987, 1, 24, 5, 0, 0, 0, time.UTC)},
		{input: "1987-01-24T00:00:00Z", want: time.Date(1987, 1, 24, 0, 0, 0, 0, time.UTC)},
		{input: "1/24/1987 12:00:00 AM -05:00", want: time.Date(1987, 1, 24, 5, 0, 0, 0, time.UTC)},
		{input: "1987-01-24T00:00:00", want: time.Date(1987, 1, 24, 0, 0, 0, 0, time.UTC)},
		{input: "1987-01-24", want: time.Date(1987, 1, 24, 0, 0, 0, 0, time.UTC)},
		{input: "1/24/1987", want: time.Date(1987, 1, 24, 0, 0, 0, 0, time.UTC)},
		{input: " 1/24/1987 3:04:05 PM ", want: time.Date(1987, 1, 24, 15, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("should keep the parsed offset", func(t *testing.T) {
		got, err := ParseDate(testDate)

		require.NoError(t, err)
		_, offset := got.Zone()
		assert.Equal(t, -5*60*60, offset)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := ParseDate("not a date")

		require.Error(t, err)
		assert.True(t, shared.IsInvalidArgument(err))
	})
}
