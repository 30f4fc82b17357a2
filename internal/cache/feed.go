package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for per-user home feed caches
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of post ids cached per user
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for feed cache entries (7 days)
	FeedCacheTTL = 7 * 24 * time.Hour
)

// FeedCache holds each viewer's home-feed candidate set as a Redis sorted
// set scored by post id, preserving store order. An interface so the feed
// service and the fan-out worker can be tested with in-memory fakes.
type FeedCache interface {
	// AddPost adds a post to a user's feed cache.
	AddPost(ctx context.Context, userID, postID int64) error

	// RemovePost removes a post from a user's feed cache.
	RemovePost(ctx context.Context, userID, postID int64) error

	// RemovePosts removes several posts from a user's feed cache at once.
	RemovePosts(ctx context.Context, userID int64, postIDs []int64) error

	// GetFeed returns up to limit post ids in store order (ascending id).
	GetFeed(ctx context.Context, userID int64, limit int) ([]int64, error)

	// WarmCache bulk-inserts post ids into a user's feed cache.
	WarmCache(ctx context.Context, userID int64, postIDs []int64) error

	// Size returns the number of posts in a user's feed cache.
	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a feed cache entry at all.
	// False means new user or expired TTL; callers warm the cache then.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisFeedCache implements FeedCache using Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

// AddPost adds a post id to the sorted set with the id itself as score.
// Pipeline: ZADD + ZREMRANGEBYRANK (trim past the cap) + EXPIRE.
func (c *RedisFeedCache) AddPost(ctx context.Context, userID, postID int64) error {
	key := feedKey(userID)
	startTime := time.Now()

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(postID),
		Member: strconv.FormatInt(postID, 10),
	})

	// The feed reads from the low end (store order), so trim the high end
	// once the set grows past the cap.
	pipe.ZRemRangeByRank(ctx, key, FeedCacheCap, -1)

	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddPost FAILED: user=%d post=%d err=%v", userID, postID, err)
		return fmt.Errorf("add post to feed: %w", err)
	}

	log.Printf("[FeedCache] AddPost OK: user=%d post=%d duration=%v",
		userID, postID, time.Since(startTime))
	return nil
}

// RemovePost removes a post from a user's feed cache.
func (c *RedisFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	key := feedKey(userID)

	removed, err := c.client.ZRem(ctx, key, strconv.FormatInt(postID, 10)).Result()
	if err != nil {
		log.Printf("[FeedCache] RemovePost FAILED: user=%d post=%d err=%v", userID, postID, err)
		return fmt.Errorf("remove post from feed: %w", err)
	}

	log.Printf("[FeedCache] RemovePost OK: user=%d post=%d removed=%d", userID, postID, removed)
	return nil
}

// RemovePosts removes a batch of posts with a single ZREM.
func (c *RedisFeedCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	key := feedKey(userID)

	members := make([]interface{}, len(postIDs))
	for i, id := range postIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	removed, err := c.client.ZRem(ctx, key, members...).Result()
	if err != nil {
		log.Printf("[FeedCache] RemovePosts FAILED: user=%d count=%d err=%v", userID, len(postIDs), err)
		return fmt.Errorf("remove posts from feed: %w", err)
	}

	log.Printf("[FeedCache] RemovePosts OK: user=%d requested=%d removed=%d", userID, len(postIDs), removed)
	return nil
}

// GetFeed returns up to limit post ids from the low end of the sorted set,
// i.e. ascending post id, which is the store's natural order.
func (c *RedisFeedCache) GetFeed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	key := feedKey(userID)
	startTime := time.Now()

	members, err := c.client.ZRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		log.Printf("[FeedCache] GetFeed FAILED: user=%d err=%v", userID, err)
		return nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, FeedCacheTTL)

	postIDs := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[FeedCache] GetFeed parse error: member=%q err=%v", m, err)
			return nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
	}

	log.Printf("[FeedCache] GetFeed OK: user=%d returned=%d duration=%v",
		userID, len(postIDs), time.Since(startTime))
	return postIDs, nil
}

// WarmCache bulk-inserts post ids using a pipeline.
func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		log.Printf("[FeedCache] WarmCache: user=%d posts=0 (nothing to warm)", userID)
		return nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	members := make([]redis.Z, len(postIDs))
	for i, id := range postIDs {
		members[i] = redis.Z{
			Score:  float64(id),
			Member: strconv.FormatInt(id, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, FeedCacheCap, -1)
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%d posts=%d err=%v", userID, len(postIDs), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%d posts=%d duration=%v",
		userID, len(postIDs), time.Since(startTime))
	return nil
}

// Size returns the number of posts in a user's feed cache.
func (c *RedisFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

// Exists checks if a user has a feed cache entry.
func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	exists, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return exists > 0, nil
}
