package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/openjob/internal/domain"
)

const scanCount = 500

type RedisSearchCache struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisSearchCache connects to Redis and creates a search cache.
func NewRedisSearchCache(addr, password string, db int, prefix string) (*RedisSearchCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c := NewRedisSearchCacheFromClient(client, prefix)
	c.owned = true
	return c, nil
}

// NewRedisSearchCacheFromClient creates a search cache on an existing client.
// Close leaves the client open.
func NewRedisSearchCacheFromClient(client *redis.Client, prefix string) *RedisSearchCache {
	return &RedisSearchCache{client: client, prefix: prefix}
}

// Client returns the underlying Redis client.
func (c *RedisSearchCache) Client() *redis.Client {
	return c.client
}

// BuildKey hashes the request body under the current generation of index:
// {prefix}:{index}:g{generation}:{sha256}.
func (c *RedisSearchCache) BuildKey(ctx context.Context, index string, body []byte) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey(index)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%s:%s:g%d:%s", c.prefix, index, gen, hex.EncodeToString(sum[:])), nil
}

// generationKey sits outside the {prefix}:{index}:* space so Flush keeps it.
func (c *RedisSearchCache) generationKey(index string) string {
	return fmt.Sprintf("%s-generation:%s", c.prefix, index)
}

func (c *RedisSearchCache) Get(ctx context.Context, key string) (*domain.SearchResponse, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var result domain.SearchResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &result, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, key string, result *domain.SearchResponse, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

// Flush moves index to a new generation and deletes the keys of the old
// ones. A result computed before the flush is written under its old key,
// which no later lookup builds, and expires with its TTL. Keys are
// collected with SCAN before any is deleted; deleting mid-scan can make the
// cursor skip keys.
func (c *RedisSearchCache) Flush(ctx context.Context, index string) (int64, error) {
	if err := c.client.Incr(ctx, c.generationKey(index)).Err(); err != nil {
		return 0, fmt.Errorf("failed to advance cache generation: %w", err)
	}

	pattern := fmt.Sprintf("%s:%s:*", c.prefix, index)

	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan redis: %w", err)
	}

	var deleted int64
	for start := 0; start < len(keys); start += scanCount {
		end := min(start+scanCount, len(keys))
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete from redis: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}

func (c *RedisSearchCache) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}
