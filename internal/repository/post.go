package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialfeed/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (user_id, image_url, description, published)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, p.UserID, p.ImageURL, p.Description, p.Published)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID returns the post with its engagement counts in one projection.
// The published flag comes back as stored; the service decides whether an
// unpublished post may be surfaced to the viewer.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.image_url, p.description, p.published, p.created_at,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
		FROM posts p
		WHERE p.id = $1
	`
	var p model.Post
	err := r.db.GetContext(ctx, &p, query, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish missing post from foreign owner
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID); err == nil && exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}

	return nil
}

func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, model.ErrPostNotFound
		}
		return 0, fmt.Errorf("failed to get post author: %w", err)
	}
	return authorID, nil
}

func (r *postRepository) GetUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.image_url, p.description, p.published, p.created_at,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
		FROM posts p
		WHERE p.user_id = $1 AND p.published
		ORDER BY p.id
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user posts: %w", err)
	}
	return posts, nil
}

// GetFeedPosts is the direct-DB feed path: published posts by the given
// authors, enriched for the viewer in a single projection, store order.
func (r *postRepository) GetFeedPosts(ctx context.Context, authorIDs []int64, viewerID int64, limit int) ([]model.FeedPost, error) {
	if len(authorIDs) == 0 {
		return []model.FeedPost{}, nil
	}

	query := `
		SELECT p.id, p.user_id, p.image_url, p.description, p.published, p.created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar_url,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $2) AS is_liked
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ANY($1) AND p.published
		ORDER BY p.id
		LIMIT $3
	`
	var posts []model.FeedPost
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(authorIDs), viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed posts: %w", err)
	}
	return posts, nil
}

// GetPostsByIDs hydrates cached feed ids for the viewer, store order.
func (r *postRepository) GetPostsByIDs(ctx context.Context, postIDs []int64, viewerID int64) ([]model.FeedPost, error) {
	if len(postIDs) == 0 {
		return []model.FeedPost{}, nil
	}

	query := `
		SELECT p.id, p.user_id, p.image_url, p.description, p.published, p.created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar_url,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $2) AS is_liked
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ANY($1) AND p.published
		ORDER BY p.id
	`
	var posts []model.FeedPost
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs), viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}
	return posts, nil
}

func (r *postRepository) GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]int64, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id FROM posts
		WHERE user_id = ANY($1) AND published
		ORDER BY id
		LIMIT $2
	`
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, pq.Array(authorIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed post ids: %w", err)
	}
	return ids, nil
}

func (r *postRepository) GetPostIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM posts WHERE user_id = $1 AND published ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post ids by user: %w", err)
	}
	return ids, nil
}
