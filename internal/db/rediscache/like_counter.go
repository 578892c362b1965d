package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"Morsel/internal/core/posts"

	"github.com/redis/go-redis/v9"
)

const likesField = "likes"

// DefaultCounterTTL bounds how long a cached counter survives without being re-seeded
const DefaultCounterTTL = 10 * time.Minute

// seedIfAbsent writes the counter only when no writer has stored one yet, and starts its TTL
// in the same step.
var seedIfAbsent = redis.NewScript(`
if redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2]) == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[3])
	return 1
end
return 0
`)

type likeCounterCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewLikeCounterCache creates a Redis-backed like counter cache.
// Counters live in the hash "post:<id>:counters" under the field "likes".
func NewLikeCounterCache(client redis.UniversalClient, ttl time.Duration) posts.CounterCache {
	if ttl <= 0 {
		ttl = DefaultCounterTTL
	}
	return &likeCounterCache{client: client, ttl: ttl}
}

func counterKey(postID string) string {
	return fmt.Sprintf("post:%v:counters", postID)
}

func (c *likeCounterCache) GetLikes(ctx context.Context, id string) (int, bool, error) {
	raw, err := c.client.HGet(ctx, counterKey(id), likesField).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read like counter: %w", err)
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt like counter %q: %w", raw, err)
	}
	return count, true, nil
}

func (c *likeCounterCache) SetLikes(ctx context.Context, id string, count int) error {
	if count < 0 {
		count = 0
	}
	key := counterKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, likesField, count)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store like counter: %w", err)
	}
	return nil
}

func (c *likeCounterCache) SeedLikes(ctx context.Context, id string, count int) error {
	if count < 0 {
		count = 0
	}
	err := seedIfAbsent.Run(ctx, c.client, []string{counterKey(id)}, likesField, count, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to seed like counter: %w", err)
	}
	return nil
}

func (c *likeCounterCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, counterKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate like counter: %w", err)
	}
	return nil
}
