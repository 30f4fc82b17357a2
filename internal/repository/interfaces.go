package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Search returns all users whose username contains the substring
	// (case-sensitive), in store order.
	Search(ctx context.Context, substring string) ([]model.UserSummary, error)
	// Delete removes the user; posts, comments, likes and follow edges go
	// with it via the schema's cascading foreign keys.
	Delete(ctx context.Context, id int64) error
}

type FollowRepository interface {
	// Create inserts the follower->followee edge. Returns false when the
	// edge already existed (no-op).
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	// Delete removes the edge. Returns false when it was not present (no-op).
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
	// SearchFollowing filters the users the given user follows by username
	// substring; empty substring matches all.
	SearchFollowing(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error)
	// SearchFollowers filters the users following the given user.
	SearchFollowers(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error)
	// CheckFollows batch-checks which of followeeIDs the follower follows.
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID returns the post regardless of published state; callers decide
	// whether unpublished posts may be surfaced.
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	Delete(ctx context.Context, postID, userID int64) error
	GetAuthorID(ctx context.Context, postID int64) (int64, error)
	// GetUserPosts returns a user's published posts with like/comment counts,
	// in store order.
	GetUserPosts(ctx context.Context, userID int64) ([]model.Post, error)
	// GetFeedPosts returns published posts authored by any of authorIDs,
	// enriched for the viewer, in store order, bounded by limit.
	GetFeedPosts(ctx context.Context, authorIDs []int64, viewerID int64, limit int) ([]model.FeedPost, error)
	// GetPostsByIDs hydrates the given posts (store order) for the viewer.
	GetPostsByIDs(ctx context.Context, postIDs []int64, viewerID int64) ([]model.FeedPost, error)
	// GetFeedPostIDs returns the ids of published posts by the given authors
	// in store order, for warming the feed cache.
	GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]int64, error)
	// GetPostIDsByUser returns all published post ids of one author.
	GetPostIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

// LikeSetRepository is the shared like-set surface. Post likes and comment
// likes are two instances of the same implementation pointed at different
// tables, so the toggle engine has a single code path.
type LikeSetRepository interface {
	// TargetExists reports whether the like target may be operated on
	// (published, for posts).
	TargetExists(ctx context.Context, targetID int64) (bool, error)
	Exists(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) (bool, error)
	Add(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error
	Remove(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error
	Count(ctx context.Context, targetID int64) (int, error)
	// SearchLikers filters the like set's members by username substring;
	// empty substring matches all. Store order.
	SearchLikers(ctx context.Context, targetID int64, substring string) ([]model.UserSummary, error)
	// NotFoundErr is the sentinel returned when the target does not resolve.
	NotFoundErr() error
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// ListByPost returns the post's full comment list in canonical order
	// (fixed first, then by creation time ascending), enriched for the
	// viewer in a single projection.
	ListByPost(ctx context.Context, postID, viewerID int64) ([]model.CommentView, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
