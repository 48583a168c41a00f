package person

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewMemoryRepository()
	})
}

func TestMemoryRepository_ConcurrentCreate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := repo.Create(ctx, createTestPerson())
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	people, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, people, workers*perWorker)

	seen := make(map[ID]bool, len(people))
	for _, p := range people {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
}

func TestMemoryRepository_StoresCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, createTestPerson())
	require.NoError(t, err)

	created.FavoriteColor = "green"
	read, err := repo.Get(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "blue", read.FavoriteColor)
}
