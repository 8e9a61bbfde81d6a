package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

const (
	redisOpTimeout = 2 * time.Second
	redisScanBatch = 100
)

// ConnectRedis parses a redis:// URL and checks the server answers.
func ConnectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCache stores JSON-encoded values under a shared key prefix so that
// several processes of the same user see one report cache. Expiry is left to
// Redis, so it does not need a Manager.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *RedisCache[T] {
	if logger == nil {
		logger = log.Discard()
	}
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCache).With("backend", "redis"),
	}
}

func (c *RedisCache[T]) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed", "key", key, log.FieldError, err)
		return zero, false
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", "key", key, log.FieldError, err)
		c.Delete(key)
		return zero, false
	}
	return data, true
}

func (c *RedisCache[T]) Set(key string, data T) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("Cache value not encodable", "key", key, log.FieldError, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), string(payload), c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", "key", key, log.FieldError, err)
	}
}

func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("Redis delete failed", "key", key, log.FieldError, err)
	}
}

// Purge removes every key under the prefix and returns how many were removed.
func (c *RedisCache[T]) Purge() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.scan(ctx)
	if err != nil {
		c.logger.Warn("Redis scan failed", log.FieldError, err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Redis purge failed", log.FieldCount, len(keys), log.FieldError, err)
		return 0
	}
	return int(n)
}

func (c *RedisCache[T]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.scan(ctx)
	if err != nil {
		c.logger.Warn("Redis scan failed", log.FieldError, err)
		return 0
	}
	return len(keys)
}

func (c *RedisCache[T]) scan(ctx context.Context) ([]string, error) {
	var (
		all    []string
		cursor uint64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", redisScanBatch).Result()
		if err != nil {
			return nil, err
		}
		all = append(all, keys...)
		if next == 0 {
			return all, nil
		}
		cursor = next
	}
}
