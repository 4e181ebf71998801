package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"event-driven-flow/internal/external"
)

// RedisStore is a Store backed by Redis hashes named "<table>:<id>"
type RedisStore struct {
	client redis.UniversalClient
	table  string
}

// NewRedisStore creates a store for the given logical table
func NewRedisStore(client redis.UniversalClient, table string) *RedisStore {
	return &RedisStore{client: client, table: table}
}

func (s *RedisStore) key(id string) string {
	return s.table + ":" + id
}

// PutItem implements Store.PutItem. Existing attributes are replaced.
func (s *RedisStore) PutItem(ctx context.Context, item Item) error {
	id := item.ID()
	if id == "" {
		return NewStoreError("PutItem", "", ErrInvalidKey)
	}

	values := make(map[string]interface{}, len(item))
	for k, v := range item {
		values[k] = v
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.HSet(ctx, s.key(id), values)
		return nil
	})
	if err != nil {
		return NewStoreError("PutItem", id, external.NewError("HSET", s.table, err))
	}
	return nil
}

// GetItem implements Store.GetItem
func (s *RedisStore) GetItem(ctx context.Context, id string) (Item, error) {
	if id == "" {
		return nil, NewStoreError("GetItem", id, ErrInvalidKey)
	}

	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, NewStoreError("GetItem", id, external.NewError("HGETALL", s.table, err))
	}
	if len(values) == 0 {
		return nil, NewStoreError("GetItem", id, ErrItemNotFound)
	}
	return Item(values), nil
}

// UpdateItem implements Store.UpdateItem. Like DynamoDB, it creates the item when absent.
func (s *RedisStore) UpdateItem(ctx context.Context, id string, set map[string]string) error {
	if id == "" {
		return NewStoreError("UpdateItem", id, ErrInvalidKey)
	}
	if len(set) == 0 {
		return NewStoreError("UpdateItem", id, ErrEmptyUpdate)
	}

	values := make(map[string]interface{}, len(set)+1)
	values[KeyAttribute] = id
	for k, v := range set {
		values[k] = v
	}

	if err := s.client.HSet(ctx, s.key(id), values).Err(); err != nil {
		return NewStoreError("UpdateItem", id, external.NewError("HSET", s.table, err))
	}
	return nil
}

// Close implements Store.Close
func (s *RedisStore) Close() error {
	return s.client.Close()
}
