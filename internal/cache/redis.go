package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces searchcore entries inside a shared Redis.
const redisKeyPrefix = "searchcore:cache:"

// redisScanCount is the batch size hint for SCAN during bulk deletes.
const redisScanCount = 200

// RedisKV is the production KV backend over a single logical Redis. The
// safety TTL is passed through to Redis so abandoned entries are eventually
// reclaimed, but read-time expiry in the Store remains authoritative.
type RedisKV struct {
	client *redis.Client
}

var _ KV = (*RedisKV)(nil)

// NewRedisKV connects to Redis at addr and verifies the connection.
func NewRedisKV(ctx context.Context, addr string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisKV{client: client}, nil
}

// NewRedisKVFromClient wraps an existing client (connection pooling is the
// caller's concern).
func NewRedisKVFromClient(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the value stored under storageKey.
func (r *RedisKV) Get(ctx context.Context, storageKey string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+storageKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores value under storageKey with the safety TTL.
func (r *RedisKV) Set(ctx context.Context, storageKey string, value []byte, safetyTTL time.Duration) error {
	if err := r.client.Set(ctx, redisKeyPrefix+storageKey, value, safetyTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the entry under storageKey.
func (r *RedisKV) Delete(ctx context.Context, storageKey string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+storageKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteMatching scans all searchcore keys and removes those whose
// partition component contains partitionSubstr.
func (r *RedisKV) DeleteMatching(ctx context.Context, partitionSubstr string) (int, error) {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanCount).Iterator()

	var matched []string
	for iter.Next(ctx) {
		full := iter.Val()
		partition := partitionOf(strings.TrimPrefix(full, redisKeyPrefix))
		if strings.Contains(partition, partitionSubstr) {
			matched = append(matched, full)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}

	if len(matched) == 0 {
		return 0, nil
	}
	if err := r.client.Del(ctx, matched...).Err(); err != nil {
		return 0, fmt.Errorf("redis bulk del: %w", err)
	}
	return len(matched), nil
}

// Close releases the client.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
