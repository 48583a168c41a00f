package person

import (
	"context"
)

// Repository defines the interface for person persistence operations
type Repository interface {
	// Create stores p under the next sequential id and returns the stored copy.
	// p.ID must be zero.
	Create(ctx context.Context, p Person) (Person, error)

	// Get retrieves a person by id
	Get(ctx context.Context, id ID) (Person, error)

	// List retrieves every stored person in no particular order
	List(ctx context.Context) ([]Person, error)

	// ListOrdered retrieves every stored person sorted by order
	ListOrdered(ctx context.Context, order Order) ([]Person, error)

	// Update replaces the stored person with the same id wholesale
	Update(ctx context.Context, p Person) (Person, error)

	// Delete removes a person
	Delete(ctx context.Context, id ID) error

	// Count returns the number of stored people
	Count(ctx context.Context) (int, error)
}

// listOrdered sorts the result of list; shared by the implementations
func listOrdered(ctx context.Context, repo Repository, order Order) ([]Person, error) {
	if !order.IsValid() {
		_, err := ParseOrder(string(order))
		return nil, err
	}
	people, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := Sort(people, order); err != nil {
		return nil, err
	}
	return people, nil
}
