package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialfeed/internal/cache"
	"socialfeed/internal/queue"
)

// FollowerProvider abstracts the follow store so the worker does not depend
// on the repository package directly.
type FollowerProvider interface {
	// GetFollowerIDs returns all follower ids for a given user.
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// AuthorPostsProvider abstracts the post store for backfill and removal when
// follow edges change.
type AuthorPostsProvider interface {
	// GetPostIDsByUser returns the published post ids of one author.
	GetPostIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

// Handler processes feed events from the queue, keeping every follower's
// feed cache in step with the social graph and the post table.
type Handler struct {
	feedCache        cache.FeedCache
	followerProvider FollowerProvider
	postsProvider    AuthorPostsProvider
}

// NewHandler creates a new event handler.
func NewHandler(feedCache cache.FeedCache, followerProvider FollowerProvider, postsProvider AuthorPostsProvider) *Handler {
	return &Handler{
		feedCache:        feedCache,
		followerProvider: followerProvider,
		postsProvider:    postsProvider,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		err = h.handleUserUnfollowed(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostCreated fans the new post out to all followers' feed caches.
// The author's own feed stays untouched: the home feed shows followed
// accounts only.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostCreated: post=%d author=%d", event.PostID, event.AuthorID)

	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	log.Printf("[Worker] PostCreated: fanning out to %d followers", len(followers))

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddPost(ctx, followerID, event.PostID); err != nil {
			log.Printf("[Worker] PostCreated: failed to add to user=%d err=%v", followerID, err)
			failCount++
			// Continue with other followers - don't fail the entire fan-out
		}
	}

	if failCount > 0 {
		return fmt.Errorf("fan-out incomplete: %d/%d failed", failCount, len(followers))
	}
	return nil
}

// handlePostDeleted removes the post from all followers' feed caches.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostDeleted: post=%d author=%d", event.PostID, event.AuthorID)

	followers, err := h.followerProvider.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemovePost(ctx, followerID, event.PostID); err != nil {
			log.Printf("[Worker] PostDeleted: failed to remove from user=%d err=%v", followerID, err)
			failCount++
		}
	}

	if failCount > 0 {
		return fmt.Errorf("removal incomplete: %d/%d failed", failCount, len(followers))
	}
	return nil
}

// handleUserFollowed backfills the followee's posts into the follower's
// feed cache so the feed reflects the new edge without a full rewarm.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserFollowed: follower=%d followee=%d", event.FollowerID, event.FolloweeID)

	// Skip backfill when the follower has no cache yet; the next feed read
	// warms it from the database with the edge already present.
	exists, err := h.feedCache.Exists(ctx, event.FollowerID)
	if err != nil {
		return fmt.Errorf("check cache exists: %w", err)
	}
	if !exists {
		log.Printf("[Worker] UserFollowed: follower=%d has no cache, skipping backfill", event.FollowerID)
		return nil
	}

	postIDs, err := h.postsProvider.GetPostIDsByUser(ctx, event.FolloweeID)
	if err != nil {
		return fmt.Errorf("get followee posts: %w", err)
	}

	if len(postIDs) == 0 {
		return nil
	}

	if err := h.feedCache.WarmCache(ctx, event.FollowerID, postIDs); err != nil {
		return fmt.Errorf("backfill feed: %w", err)
	}

	log.Printf("[Worker] UserFollowed: backfilled %d posts into user=%d", len(postIDs), event.FollowerID)
	return nil
}

// handleUserUnfollowed removes the followee's posts from the follower's
// feed cache.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserUnfollowed: follower=%d followee=%d", event.FollowerID, event.FolloweeID)

	postIDs, err := h.postsProvider.GetPostIDsByUser(ctx, event.FolloweeID)
	if err != nil {
		return fmt.Errorf("get followee posts: %w", err)
	}

	if err := h.feedCache.RemovePosts(ctx, event.FollowerID, postIDs); err != nil {
		return fmt.Errorf("remove followee posts: %w", err)
	}

	return nil
}
