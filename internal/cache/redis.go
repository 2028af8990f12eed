// Package cache memoizes per-owner category lists in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCategoryTTL bounds how stale a cached category list can get.
const DefaultCategoryTTL = 10 * time.Minute

const keyPrefix = "stockhive:categories:"

// fillScript stores the list only while the owner's generation still matches the one read
// before the store query, so a fill racing a write cannot resurrect the old list.
var fillScript = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// NewRedisClient creates a Redis client from a redis:// URL or a plain host:port and pings it.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CategoryCache stores each owner's distinct categories as a JSON array with a TTL.
type CategoryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCategoryCache wraps client. A non-positive ttl uses DefaultCategoryTTL.
func NewCategoryCache(client redis.Cmdable, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

func categoryKey(ownerID string) string {
	return keyPrefix + ownerID
}

func generationKey(ownerID string) string {
	return keyPrefix + ownerID + ":gen"
}

// GetCategories reports ok=false on a miss. The owner's generation is returned either way
// and must be handed back to SetCategories.
func (c *CategoryCache) GetCategories(ctx context.Context, ownerID string) ([]string, int64, bool, error) {
	vals, err := c.client.MGet(ctx, categoryKey(ownerID), generationKey(ownerID)).Result()
	if err != nil {
		return nil, 0, false, err
	}
	generation, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	data, isString := vals[0].(string)
	if !isString {
		return nil, generation, false, nil
	}
	var categories []string
	if err := json.Unmarshal([]byte(data), &categories); err != nil {
		return nil, 0, false, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return categories, generation, true, nil
}

// SetCategories stores categories for ownerID unless InvalidateCategories ran after generation was read.
func (c *CategoryCache) SetCategories(ctx context.Context, ownerID string, generation int64, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	keys := []string{categoryKey(ownerID), generationKey(ownerID)}
	return fillScript.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), string(data), c.ttl.Milliseconds()).Err()
}

// InvalidateCategories bumps the owner's generation and drops the cached list so the next read goes to the store.
func (c *CategoryCache) InvalidateCategories(ctx context.Context, ownerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(ownerID))
		pipe.Del(ctx, categoryKey(ownerID))
		return nil
	})
	return err
}

func parseGeneration(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid category generation %q: %w", g, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected category generation type %T", v)
	}
}
