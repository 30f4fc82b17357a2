package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialfeed/internal/cache"
	"socialfeed/internal/model"
	"socialfeed/internal/repository"
)

const (
	// FeedMaxLimit caps the home feed page size.
	FeedMaxLimit = 25

	// CacheWarmLimit is the most post ids fetched when warming a cold cache.
	CacheWarmLimit = 500
)

// FeedService serves the home feed: published posts authored by the users
// the viewer follows, in store order.
type FeedService struct {
	feedCache  cache.FeedCache
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewFeedService(
	feedCache cache.FeedCache,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

// GetFeed retrieves the viewer's home feed.
//
// Flow:
// 1. Check whether the viewer's feed cache exists
// 2. If not, warm it from the database (followees' post ids, up to 500)
// 3. Read post ids from the cache in store order
// 4. Hydrate: one enriched query for the full post rows
// On any cache failure the feed falls back to a direct database query.
func (s *FeedService) GetFeed(ctx context.Context, viewerID int64, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = model.FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	exists, err := s.feedCache.Exists(ctx, viewerID)
	if err != nil {
		log.Printf("[FeedService] Cache check failed for user=%d: %v", viewerID, err)
		return s.feedFromDB(ctx, viewerID, limit)
	}

	if !exists {
		log.Printf("[FeedService] Cache miss for user=%d, warming...", viewerID)
		if err := s.warmCache(ctx, viewerID); err != nil {
			log.Printf("[FeedService] Cache warm failed for user=%d: %v", viewerID, err)
			return s.feedFromDB(ctx, viewerID, limit)
		}
	}

	postIDs, err := s.feedCache.GetFeed(ctx, viewerID, limit)
	if err != nil {
		log.Printf("[FeedService] Cache read failed for user=%d: %v", viewerID, err)
		return s.feedFromDB(ctx, viewerID, limit)
	}

	if len(postIDs) == 0 {
		return &model.FeedResponse{Posts: []model.FeedPost{}}, nil
	}

	posts, err := s.postRepo.GetPostsByIDs(ctx, postIDs, viewerID)
	if err != nil {
		return nil, fmt.Errorf("hydrate posts: %w", err)
	}

	log.Printf("[FeedService] GetFeed OK: user=%d posts=%d duration=%v",
		viewerID, len(posts), time.Since(startTime))

	return &model.FeedResponse{Posts: posts}, nil
}

// warmCache fills the viewer's feed cache with the post ids of everyone the
// viewer follows. The viewer's own posts never enter their feed.
func (s *FeedService) warmCache(ctx context.Context, viewerID int64) error {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		return fmt.Errorf("get followees: %w", err)
	}

	if len(followeeIDs) == 0 {
		return nil
	}

	postIDs, err := s.postRepo.GetFeedPostIDs(ctx, followeeIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get feed post ids: %w", err)
	}

	return s.feedCache.WarmCache(ctx, viewerID, postIDs)
}

// feedFromDB is the cache-bypass path: one enriched query over the viewer's
// followees.
func (s *FeedService) feedFromDB(ctx context.Context, viewerID int64, limit int) (*model.FeedResponse, error) {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get followees: %w", err)
	}

	if len(followeeIDs) == 0 {
		return &model.FeedResponse{Posts: []model.FeedPost{}}, nil
	}

	posts, err := s.postRepo.GetFeedPosts(ctx, followeeIDs, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("get feed posts: %w", err)
	}

	return &model.FeedResponse{Posts: posts}, nil
}
