// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces every key this store writes.
	DefaultRedisPrefix = "panctl:cache:"

	redisOpTimeout = 5 * time.Second
	redisScanCount = 100
)

// RedisStore shares entries between invocations and hosts through Redis.
// Values are the JSON encoded Entry. No Redis-side expiry is set; freshness
// is decided on read like every other Store.
type RedisStore struct {
	client *redis.Client
	prefix string
	opts   options
	owned  bool
}

var _ Store = (*RedisStore)(nil)

// RedisOptions is the connection configuration for OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis dials Redis and verifies the connection with a PING.
func OpenRedis(ro RedisOptions, opts ...Option) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     ro.Addr,
		Password: ro.Password,
		DB:       ro.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", ro.Addr, err)
	}

	s := NewRedisStore(rdb, ro.Prefix, opts...)
	s.owned = true
	return s, nil
}

// NewRedisStore wraps an existing client. An empty prefix means
// DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, opts: newOptions(opts)}
}

// Close releases the client if OpenRedis created it.
func (s *RedisStore) Close() error {
	if s.owned && s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(key string) (*Entry, bool) {
	return s.GetWithin(key, s.opts.ttl)
}

func (s *RedisStore) GetWithin(key string, ttl time.Duration) (*Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	e, err := s.load(ctx, s.redisKey(key))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Debugf("redis cache read failed for %s", key)
		}
		return nil, false
	}
	if !e.IsFresh(s.opts.now(), ttl) {
		return nil, false
	}
	return e, true
}

func (s *RedisStore) Put(key string, items json.RawMessage, nextCursor string, hasMore bool) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := encodeEntry(newEntry(key, items, nextCursor, hasMore, s.opts.now()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET error for key '%s': %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis DEL error for key '%s': %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis DEL error for prefix '%s': %w", s.prefix, err)
	}
	return nil
}

func (s *RedisStore) Purge(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}

	now := s.opts.now()
	var stale []string
	for _, k := range keys {
		e, err := s.load(ctx, k)
		if err == nil && e.IsFresh(now, olderThan) {
			continue
		}
		stale = append(stale, k)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.client.Del(ctx, stale...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis DEL error during purge: %w", err)
	}
	return len(stale), nil
}

func (s *RedisStore) Stats() (Stats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := s.scan(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := s.opts.now()
	st := Stats{Backend: BackendRedis, Entries: len(keys)}
	for _, k := range keys {
		if e, err := s.load(ctx, k); err != nil || !e.IsFresh(now, s.opts.ttl) {
			st.Stale++
		}
	}
	return st, nil
}

func (s *RedisStore) load(ctx context.Context, rkey string) (*Entry, error) {
	b, err := s.client.Get(ctx, rkey).Bytes()
	if err != nil {
		return nil, err
	}
	return decodeEntry(b)
}

// scan walks the prefix with SCAN so a large keyspace never blocks the server.
func (s *RedisStore) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		all    []string
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", redisScanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis SCAN error for prefix '%s': %w", s.prefix, err)
		}
		all = append(all, keys...)
		if next == 0 {
			return all, nil
		}
		cursor = next
	}
}

func encodeEntry(e *Entry) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return b, nil
}

func decodeEntry(b []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &e, nil
}
