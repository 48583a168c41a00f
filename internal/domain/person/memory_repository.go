package person

import (
	"context"
	"sync"

	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

// MemoryRepository is a thread-safe in-memory implementation of Repository.
// The id counter lives with the map: it starts at 0 when the repository is
// built, is never reset and never reuses an id after a delete.
type MemoryRepository struct {
	mu      sync.RWMutex
	people  map[ID]Person
	counter ID
}

// NewMemoryRepository creates an empty in-memory person repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		people: make(map[ID]Person),
	}
}

// Create implements Repository
func (r *MemoryRepository) Create(_ context.Context, p Person) (Person, error) {
	if p.ID.IsAssigned() {
		return Person{}, shared.ErrInvalidArgumentf("person id must be 0 on create, got %d", p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := p.WithID(r.counter)
	r.people[stored.ID] = stored
	r.counter++
	return stored, nil
}

// Get implements Repository
func (r *MemoryRepository) Get(_ context.Context, id ID) (Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.people[id]
	if !ok {
		return Person{}, shared.ErrNotFound("person", int(id))
	}
	return p, nil
}

// List implements Repository
func (r *MemoryRepository) List(_ context.Context) ([]Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Person, 0, len(r.people))
	for _, p := range r.people {
		result = append(result, p)
	}
	return result, nil
}

// ListOrdered implements Repository
func (r *MemoryRepository) ListOrdered(ctx context.Context, order Order) ([]Person, error) {
	return listOrdered(ctx, r, order)
}

// Update implements Repository
func (r *MemoryRepository) Update(_ context.Context, p Person) (Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.people[p.ID]; !ok {
		return Person{}, shared.ErrNotFound("person", int(p.ID))
	}
	r.people[p.ID] = p
	return p, nil
}

// Delete implements Repository
func (r *MemoryRepository) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.people[id]; !ok {
		return shared.ErrNotFound("person", int(id))
	}
	delete(r.people, id)
	return nil
}

// Count implements Repository
func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.people), nil
}

// Ensure MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)
