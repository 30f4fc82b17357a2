package worker

import (
	"context"
	"testing"

	"socialfeed/internal/queue"
)

type fakeCache struct {
	feeds map[int64][]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{feeds: make(map[int64][]int64)}
}

func (c *fakeCache) AddPost(ctx context.Context, userID, postID int64) error {
	c.feeds[userID] = append(c.feeds[userID], postID)
	return nil
}

func (c *fakeCache) RemovePost(ctx context.Context, userID, postID int64) error {
	kept := c.feeds[userID][:0]
	for _, id := range c.feeds[userID] {
		if id != postID {
			kept = append(kept, id)
		}
	}
	c.feeds[userID] = kept
	return nil
}

func (c *fakeCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	for _, id := range postIDs {
		if err := c.RemovePost(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeCache) GetFeed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return c.feeds[userID], nil
}

func (c *fakeCache) WarmCache(ctx context.Context, userID int64, postIDs []int64) error {
	c.feeds[userID] = append(c.feeds[userID], postIDs...)
	return nil
}

func (c *fakeCache) Size(ctx context.Context, userID int64) (int64, error) {
	return int64(len(c.feeds[userID])), nil
}

func (c *fakeCache) Exists(ctx context.Context, userID int64) (bool, error) {
	_, ok := c.feeds[userID]
	return ok, nil
}

type fakeFollowers map[int64][]int64

func (f fakeFollowers) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f[userID], nil
}

type fakePosts map[int64][]int64

func (f fakePosts) GetPostIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return f[userID], nil
}

func TestHandler_PostCreated_FansOutToFollowersOnly(t *testing.T) {
	cache := newFakeCache()
	handler := NewHandler(cache, fakeFollowers{1: {2, 3}}, fakePosts{})

	err := handler.HandleEvent(context.Background(), queue.NewPostCreatedEvent(100, 1))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	for _, follower := range []int64{2, 3} {
		if len(cache.feeds[follower]) != 1 || cache.feeds[follower][0] != 100 {
			t.Errorf("follower %d feed = %v, want [100]", follower, cache.feeds[follower])
		}
	}

	// The author's own feed never receives their post
	if len(cache.feeds[1]) != 0 {
		t.Errorf("author feed = %v, want empty", cache.feeds[1])
	}
}

func TestHandler_PostDeleted_RemovesFromFollowers(t *testing.T) {
	cache := newFakeCache()
	cache.feeds[2] = []int64{100, 101}
	handler := NewHandler(cache, fakeFollowers{1: {2}}, fakePosts{})

	err := handler.HandleEvent(context.Background(), queue.NewPostDeletedEvent(100, 1))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(cache.feeds[2]) != 1 || cache.feeds[2][0] != 101 {
		t.Errorf("follower feed = %v, want [101]", cache.feeds[2])
	}
}

func TestHandler_UserFollowed_BackfillsExistingCache(t *testing.T) {
	cache := newFakeCache()
	cache.feeds[2] = []int64{} // follower has a live cache
	handler := NewHandler(cache, fakeFollowers{}, fakePosts{1: {100, 101}})

	err := handler.HandleEvent(context.Background(), queue.NewUserFollowedEvent(2, 1))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(cache.feeds[2]) != 2 {
		t.Errorf("follower feed = %v, want the followee's posts", cache.feeds[2])
	}
}

func TestHandler_UserFollowed_SkipsColdCache(t *testing.T) {
	cache := newFakeCache()
	handler := NewHandler(cache, fakeFollowers{}, fakePosts{1: {100}})

	err := handler.HandleEvent(context.Background(), queue.NewUserFollowedEvent(2, 1))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// No cache yet, so the next feed read warms it from the database instead
	if _, ok := cache.feeds[2]; ok {
		t.Error("backfill must not create a cache for a cold follower")
	}
}

func TestHandler_UserUnfollowed_RemovesFolloweePosts(t *testing.T) {
	cache := newFakeCache()
	cache.feeds[2] = []int64{100, 101, 200}
	handler := NewHandler(cache, fakeFollowers{}, fakePosts{1: {100, 101}})

	err := handler.HandleEvent(context.Background(), queue.NewUserUnfollowedEvent(2, 1))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(cache.feeds[2]) != 1 || cache.feeds[2][0] != 200 {
		t.Errorf("follower feed = %v, want [200]", cache.feeds[2])
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	handler := NewHandler(newFakeCache(), fakeFollowers{}, fakePosts{})

	err := handler.HandleEvent(context.Background(), queue.FeedEvent{Type: "mystery"})
	if err == nil {
		t.Error("expected an error for an unknown event type")
	}
}
