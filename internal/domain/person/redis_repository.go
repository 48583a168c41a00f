package person

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/danghamo/peoplerecords/internal/domain/shared"
)

// DefaultKeyPrefix namespaces every key the Redis repository writes
const DefaultKeyPrefix = "peoplerecords"

// RedisRepository implements Repository on plain Redis strings and sets.
// Ids come from INCR on a counter key, so several processes can share one
// store and still hand out distinct sequential ids.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a new Redis-backed person repository
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisRepository) personKey(id ID) string {
	return fmt.Sprintf("%s:person:%d", r.prefix, id)
}

func (r *RedisRepository) idsKey() string {
	return r.prefix + ":people:ids"
}

func (r *RedisRepository) counterKey() string {
	return r.prefix + ":people:counter"
}

// Create implements Repository
func (r *RedisRepository) Create(ctx context.Context, p Person) (Person, error) {
	if p.ID.IsAssigned() {
		return Person{}, shared.ErrInvalidArgumentf("person id must be 0 on create, got %d", p.ID)
	}

	// INCR starts at 1, ids start at 0
	next, err := r.client.Incr(ctx, r.counterKey()).Result()
	if err != nil {
		return Person{}, fmt.Errorf("failed to allocate person id: %w", err)
	}
	stored := p.WithID(ID(next - 1))

	jsonBytes, err := json.Marshal(stored)
	if err != nil {
		return Person{}, fmt.Errorf("failed to serialize person: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.personKey(stored.ID), jsonBytes, 0)
		pipe.SAdd(ctx, r.idsKey(), int(stored.ID))
		return nil
	})
	if err != nil {
		return Person{}, fmt.Errorf("failed to store person: %w", err)
	}
	return stored, nil
}

// Get implements Repository
func (r *RedisRepository) Get(ctx context.Context, id ID) (Person, error) {
	data, err := r.client.Get(ctx, r.personKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Person{}, shared.ErrNotFound("person", int(id))
	}
	if err != nil {
		return Person{}, fmt.Errorf("failed to get person from Redis: %w", err)
	}

	var p Person
	if err := json.Unmarshal(data, &p); err != nil {
		return Person{}, fmt.Errorf("failed to deserialize person: %w", err)
	}
	return p, nil
}

// List implements Repository
func (r *RedisRepository) List(ctx context.Context) ([]Person, error) {
	members, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list person ids: %w", err)
	}
	if len(members) == 0 {
		return []Person{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		id, err := strconv.Atoi(member)
		if err != nil {
			continue // Skip foreign members
		}
		keys = append(keys, r.personKey(ID(id)))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load people: %w", err)
	}

	people := make([]Person, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue // deleted between SMEMBERS and MGET
		}
		var p Person
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to deserialize person: %w", err)
		}
		people = append(people, p)
	}
	return people, nil
}

// ListOrdered implements Repository
func (r *RedisRepository) ListOrdered(ctx context.Context, order Order) ([]Person, error) {
	return listOrdered(ctx, r, order)
}

// Update implements Repository
func (r *RedisRepository) Update(ctx context.Context, p Person) (Person, error) {
	key := r.personKey(p.ID)

	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return Person{}, fmt.Errorf("failed to serialize person: %w", err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return shared.ErrNotFound("person", int(p.ID))
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonBytes, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return Person{}, err
	}
	return p, nil
}

// Delete implements Repository
func (r *RedisRepository) Delete(ctx context.Context, id ID) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.personKey(id))
		pipe.SRem(ctx, r.idsKey(), int(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if del.Val() == 0 {
		return shared.ErrNotFound("person", int(id))
	}
	return nil
}

// Count implements Repository
func (r *RedisRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.idsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return int(n), nil
}

// Ensure RedisRepository implements Repository.
var _ Repository = (*RedisRepository)(nil)
