package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/KrystalRay/KFit/internal/fitness"
)

// DefaultRedisPrefix namespaces cache keys.
const DefaultRedisPrefix = "kfit:cache:"

// RedisStore keeps each entry as a JSON envelope under prefix+kind:date.
// Keys carry no Redis expiry: staleness is judged on read from stored_at,
// so changing the TTL does not itself drop entries.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ fitness.Cache = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the entry for (kind, date) unless it is missing or stale.
func (s *RedisStore) Get(ctx context.Context, kind fitness.Kind, date string) (fitness.Entry, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key(kind, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fitness.Entry{}, false, nil
	}
	if err != nil {
		return fitness.Entry{}, false, fmt.Errorf("%w: redis get: %v", ErrCacheIO, err)
	}

	var e fitness.Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return fitness.Entry{}, false, fmt.Errorf("%w: decode envelope: %v", ErrCacheIO, err)
	}
	if expired(e.StoredAt, s.now(), s.ttl) {
		return fitness.Entry{}, false, nil
	}
	return e, true, nil
}

// Put overwrites the entry for (kind, date).
func (s *RedisStore) Put(ctx context.Context, kind fitness.Kind, date string, payload json.RawMessage) error {
	if err := validKey(kind, date); err != nil {
		return err
	}
	data, err := json.Marshal(fitness.Entry{
		Kind:     kind,
		Date:     date,
		Payload:  payload,
		StoredAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: encode envelope: %v", ErrCacheIO, err)
	}
	if err := s.client.Set(ctx, s.prefix+key(kind, date), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrCacheIO, err)
	}
	return nil
}

// InvalidateAll deletes every key under the prefix.
func (s *RedisStore) InvalidateAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: redis scan: %v", ErrCacheIO, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrCacheIO, err)
	}
	return nil
}
