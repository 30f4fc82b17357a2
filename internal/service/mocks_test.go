package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
	"socialfeed/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository interfaces, so unit tests swap in mocks with
// per-test function fields instead of a real database.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	searchFn           func(ctx context.Context, substring string) ([]model.UserSummary, error)
	deleteFn           func(ctx context.Context, id int64) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) Search(ctx context.Context, substring string) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, substring)
	}
	return nil, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockFollowRepository struct {
	createFn          func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	deleteFn          func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	existsFn          func(ctx context.Context, followerID, followeeID int64) (bool, error)
	countFollowersFn  func(ctx context.Context, userID int64) (int, error)
	countFollowingFn  func(ctx context.Context, userID int64) (int, error)
	searchFollowingFn func(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error)
	searchFollowersFn func(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error)
	checkFollowsFn    func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	getFollowerIDsFn  func(ctx context.Context, userID int64) ([]int64, error)
	getFolloweeIDsFn  func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) SearchFollowing(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error) {
	if m.searchFollowingFn != nil {
		return m.searchFollowingFn(ctx, userID, substring)
	}
	return nil, nil
}

func (m *mockFollowRepository) SearchFollowers(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error) {
	if m.searchFollowersFn != nil {
		return m.searchFollowersFn(ctx, userID, substring)
	}
	return nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn           func(ctx context.Context, post *model.Post) error
	getByIDFn          func(ctx context.Context, postID int64) (*model.Post, error)
	deleteFn           func(ctx context.Context, postID, userID int64) error
	getAuthorIDFn      func(ctx context.Context, postID int64) (int64, error)
	getUserPostsFn     func(ctx context.Context, userID int64) ([]model.Post, error)
	getFeedPostsFn     func(ctx context.Context, authorIDs []int64, viewerID int64, limit int) ([]model.FeedPost, error)
	getPostsByIDsFn    func(ctx context.Context, postIDs []int64, viewerID int64) ([]model.FeedPost, error)
	getFeedPostIDsFn   func(ctx context.Context, authorIDs []int64, limit int) ([]int64, error)
	getPostIDsByUserFn func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) GetUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	if m.getUserPostsFn != nil {
		return m.getUserPostsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockPostRepository) GetFeedPosts(ctx context.Context, authorIDs []int64, viewerID int64, limit int) ([]model.FeedPost, error) {
	if m.getFeedPostsFn != nil {
		return m.getFeedPostsFn(ctx, authorIDs, viewerID, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetPostsByIDs(ctx context.Context, postIDs []int64, viewerID int64) ([]model.FeedPost, error) {
	if m.getPostsByIDsFn != nil {
		return m.getPostsByIDsFn(ctx, postIDs, viewerID)
	}
	return nil, nil
}

func (m *mockPostRepository) GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]int64, error) {
	if m.getFeedPostIDsFn != nil {
		return m.getFeedPostIDsFn(ctx, authorIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetPostIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	if m.getPostIDsByUserFn != nil {
		return m.getPostIDsByUserFn(ctx, userID)
	}
	return nil, nil
}

// mockLikeSet is an in-memory like set keyed by (targetID, userID).
type mockLikeSet struct {
	targets  map[int64]bool
	members  map[[2]int64]bool
	notFound error

	targetExistsFn func(ctx context.Context, targetID int64) (bool, error)
	searchLikersFn func(ctx context.Context, targetID int64, substring string) ([]model.UserSummary, error)
}

func newMockLikeSet(notFound error, targetIDs ...int64) *mockLikeSet {
	targets := make(map[int64]bool)
	for _, id := range targetIDs {
		targets[id] = true
	}
	return &mockLikeSet{
		targets:  targets,
		members:  make(map[[2]int64]bool),
		notFound: notFound,
	}
}

func (m *mockLikeSet) TargetExists(ctx context.Context, targetID int64) (bool, error) {
	if m.targetExistsFn != nil {
		return m.targetExistsFn(ctx, targetID)
	}
	return m.targets[targetID], nil
}

func (m *mockLikeSet) Exists(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) (bool, error) {
	return m.members[[2]int64{targetID, userID}], nil
}

func (m *mockLikeSet) Add(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error {
	m.members[[2]int64{targetID, userID}] = true
	return nil
}

func (m *mockLikeSet) Remove(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error {
	delete(m.members, [2]int64{targetID, userID})
	return nil
}

func (m *mockLikeSet) Count(ctx context.Context, targetID int64) (int, error) {
	count := 0
	for key := range m.members {
		if key[0] == targetID {
			count++
		}
	}
	return count, nil
}

func (m *mockLikeSet) SearchLikers(ctx context.Context, targetID int64, substring string) ([]model.UserSummary, error) {
	if m.searchLikersFn != nil {
		return m.searchLikersFn(ctx, targetID, substring)
	}
	return nil, nil
}

func (m *mockLikeSet) NotFoundErr() error {
	return m.notFound
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	getByIDFn    func(ctx context.Context, commentID int64) (*model.Comment, error)
	listByPostFn func(ctx context.Context, postID, viewerID int64) ([]model.CommentView, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, content)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID, viewerID int64) ([]model.CommentView, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID, viewerID)
	}
	return []model.CommentView{}, nil
}

// =============================================================================
// MOCK CACHE AND PUBLISHER
// =============================================================================

type mockFeedCache struct {
	feeds map[int64][]int64

	existsFn    func(ctx context.Context, userID int64) (bool, error)
	getFeedFn   func(ctx context.Context, userID int64, limit int) ([]int64, error)
	warmCacheFn func(ctx context.Context, userID int64, postIDs []int64) error
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{feeds: make(map[int64][]int64)}
}

func (m *mockFeedCache) AddPost(ctx context.Context, userID, postID int64) error {
	m.feeds[userID] = append(m.feeds[userID], postID)
	return nil
}

func (m *mockFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	kept := m.feeds[userID][:0]
	for _, id := range m.feeds[userID] {
		if id != postID {
			kept = append(kept, id)
		}
	}
	m.feeds[userID] = kept
	return nil
}

func (m *mockFeedCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	for _, id := range postIDs {
		if err := m.RemovePost(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockFeedCache) GetFeed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, userID, limit)
	}
	ids := m.feeds[userID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, userID int64, postIDs []int64) error {
	if m.warmCacheFn != nil {
		return m.warmCacheFn(ctx, userID, postIDs)
	}
	m.feeds[userID] = append(m.feeds[userID], postIDs...)
	return nil
}

func (m *mockFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	return int64(len(m.feeds[userID])), nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	_, ok := m.feeds[userID]
	return ok, nil
}

type mockPublisher struct {
	events []queue.FeedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}

// =============================================================================
// TRANSACTION HELPERS
// =============================================================================

// newTxDB returns a sqlx database backed by sqlmock that allows any number
// of begin/commit/rollback cycles. Services own transactions; in unit tests
// the repositories are mocked, so the tx handle is inert.
func newTxDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	return sqlx.NewDb(db, "sqlmock")
}
