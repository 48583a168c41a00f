package person

import (
	"sort"
	"strings"

	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

// Order selects how a listing is sorted
type Order string

const (
	// ByGender sorts ascending by gender, then ascending by last name
	ByGender Order = "gender"
	// ByBirthdate sorts ascending by date of birth
	ByBirthdate Order = "birthdate"
	// ByName sorts descending by last name
	ByName Order = "name"
)

// Orders lists every supported order in the order the console prompts them
var Orders = []Order{ByName, ByBirthdate, ByGender}

// String returns string representation
func (o Order) String() string {
	return string(o)
}

// IsValid checks if the order is one of the supported options
func (o Order) IsValid() bool {
	switch o {
	case ByGender, ByBirthdate, ByName:
		return true
	}
	return false
}

// ParseOrder maps a keyword to an Order. Matching is exact.
func ParseOrder(value string) (Order, error) {
	order := Order(value)
	if !order.IsValid() {
		return "", shared.ErrInvalidArgumentf("unknown order %q, expected one of %s", value, orderNames())
	}
	return order, nil
}

// Sort orders people in place. The sort is stable so records that tie keep
// their relative order.
func Sort(people []Person, order Order) error {
	less, err := lessFunc(order)
	if err != nil {
		return err
	}
	sort.SliceStable(people, func(i, j int) bool {
		return less(people[i], people[j])
	})
	return nil
}

func lessFunc(order Order) (func(a, b Person) bool, error) {
	switch order {
	case ByBirthdate:
		return func(a, b Person) bool {
			return a.DateOfBirth.Before(b.DateOfBirth)
		}, nil
	case ByGender:
		return func(a, b Person) bool {
			if a.Gender != b.Gender {
				return a.Gender < b.Gender
			}
			return a.LastName < b.LastName
		}, nil
	case ByName:
		// descending, unlike the gender tie-break
		return func(a, b Person) bool {
			return a.LastName > b.LastName
		}, nil
	default:
		return nil, shared.ErrInvalidArgumentf("unknown order %q, expected one of %s", string(order), orderNames())
	}
}

func orderNames() string {
	names := make([]string, 0, len(Orders))
	for _, o := range Orders {
		names = append(names, o.String())
	}
	return strings.Join(names, ", ")
}
