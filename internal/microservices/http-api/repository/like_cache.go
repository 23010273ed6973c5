package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LikeCountCache mirrors comments.like_count in redis so hot threads do not
// hammer the counter column on every list. The database value always wins:
// writes go DB-first, then the cache entry is refreshed.
type LikeCountCache struct {
	client *redis.Client // Redis client instance
	ttl    time.Duration
}

// constructor for LikeCountCache
func NewLikeCountCache(redisAddr, redisPassword string, ttl time.Duration) (*LikeCountCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &LikeCountCache{client: rdb, ttl: ttl}, nil
}

func likeCountKey(commentID int64) string {
	return fmt.Sprintf("comment:%d:like_count", commentID)
}

// Get returns (count, true) on a cache hit, (0, false) on a miss.
func (c *LikeCountCache) Get(ctx context.Context, commentID int64) (int, bool, error) {
	if c == nil || c.client == nil {
		// No-op for testing/mock mode - always miss
		return 0, false, nil
	}
	value, err := c.client.Get(ctx, likeCountKey(commentID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Set refreshes the cached counter after a DB write
func (c *LikeCountCache) Set(ctx context.Context, commentID int64, count int) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, likeCountKey(commentID), count, c.ttl).Err()
}

// Invalidate drops the cached counter so the next read falls through to the DB
func (c *LikeCountCache) Invalidate(ctx context.Context, commentID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, likeCountKey(commentID)).Err()
}

// Close releases the underlying redis connection
func (c *LikeCountCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
