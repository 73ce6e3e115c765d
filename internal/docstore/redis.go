package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"intake/pkg/platform/sentinel"
)

const (
	redisDocKeyPrefix = "doc:"
	redisIDsKeyPrefix = "ids:"
)

// RedisStore persists each document as a JSON string keyed by
// doc:{collection}:{id} with a per-collection id set for enumeration.
// Ordering is applied client-side after fetch; Redis has no native ordered
// field query over JSON values.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed document store. The client
// lifecycle is managed externally.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(collection, id string) string {
	return redisDocKeyPrefix + collection + ":" + id
}

func idsKey(collection string) string {
	return redisIDsKeyPrefix + collection
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	raw, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, fields map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(collection, id), raw, 0)
	pipe.SAdd(ctx, idsKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redis set %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	pipe := s.client.TxPipeline()
	delCmd := pipe.Del(ctx, docKey(collection, id))
	pipe.SRem(ctx, idsKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", collection, id, err)
	}
	if delCmd.Val() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) QueryAll(ctx context.Context, collection, orderBy string, descending bool) ([]*Document, error) {
	ids, err := s.client.SMembers(ctx, idsKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list ids %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis fetch %s: %w", collection, err)
	}

	docs := make([]*Document, 0, len(values))
	for i, v := range values {
		// A nil entry means the document was deleted between SMEMBERS and
		// MGET; skip it rather than fail the listing.
		raw, ok := v.(string)
		if !ok {
			continue
		}
		fields, err := decodeFields([]byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, &Document{ID: ids[i], Fields: fields})
	}
	sortDocuments(docs, orderBy, descending)
	return docs, nil
}
