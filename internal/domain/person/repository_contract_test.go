package person

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

// createTestPerson creates an unstored test person
func createTestPerson() Person {
	return New("last", "first", "male", time.Date(1987, time.January, 24, 0, 0, 0, 0, time.UTC), "blue")
}

// runRepositoryContract exercises behavior every Repository must share
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("should start empty", func(t *testing.T) {
		repo := newRepo(t)

		people, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, people)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("should assign sequential ids starting at zero", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)
		second, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		assert.Equal(t, ID(0), first.ID)
		assert.Equal(t, ID(1), second.ID)
	})

	t.Run("should reject non-zero id on create without mutating", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		_, err = repo.Create(ctx, createTestPerson().WithID(5))

		require.Error(t, err)
		assert.True(t, shared.IsInvalidArgument(err))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("should not deduplicate identical people", func(t *testing.T) {
		repo := newRepo(t)
		p := createTestPerson()

		first, err := repo.Create(ctx, p)
		require.NoError(t, err)
		second, err := repo.Create(ctx, p)
		require.NoError(t, err)

		assert.Less(t, first.ID, second.ID)
		people, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, people, 2)
	})

	t.Run("should round trip create and get", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)
		read, err := repo.Get(ctx, created.ID)

		require.NoError(t, err)
		assert.True(t, created.Equal(read))
	})

	t.Run("should fail get on unknown id", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		_, err = repo.Get(ctx, created.ID+1)

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("should replace all fields on update", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		replacement := Person{ID: created.ID, LastName: "renamed", FavoriteColor: "green"}
		updated, err := repo.Update(ctx, replacement)
		require.NoError(t, err)

		read, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, read.Equal(replacement))
		assert.Empty(t, read.FirstName)
		assert.Empty(t, read.Gender)
		assert.True(t, read.DateOfBirth.IsZero())
	})

	t.Run("should fail update on unknown id without mutating", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		changed := created
		changed.FavoriteColor = "green"
		_, err = repo.Update(ctx, changed.WithID(created.ID+1))

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		read, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "blue", read.FavoriteColor)
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("should delete existing person", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))

		_, err = repo.Get(ctx, created.ID)
		assert.True(t, shared.IsNotFound(err))
		people, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("should fail delete on unknown id without mutating", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		err = repo.Delete(ctx, created.ID+1)

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("should never reuse ids after delete", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, first.ID))

		second, err := repo.Create(ctx, createTestPerson())
		require.NoError(t, err)

		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("should list in requested order", func(t *testing.T) {
		repo := newRepo(t)
		for _, name := range []string{"Bravo", "Delta", "Alpha", "Charlie"} {
			p := createTestPerson()
			p.LastName = name
			_, err := repo.Create(ctx, p)
			require.NoError(t, err)
		}

		people, err := repo.ListOrdered(ctx, ByName)

		require.NoError(t, err)
		assert.Equal(t, []string{"Delta", "Charlie", "Bravo", "Alpha"}, lastNames(people))
	})

	t.Run("should reject unknown order", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.ListOrdered(ctx, Order("age"))

		require.Error(t, err)
		assert.True(t, shared.IsInvalidArgument(err))
	})
}
