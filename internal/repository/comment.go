package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, user_id, content, fixed)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, post_id, user_id, content, fixed, created_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, content, fixed, created_at
		FROM comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// ListByPost returns the post's full comment list in canonical order: fixed
// comments first (creation order among themselves), then the rest by
// creation time ascending, id as the tiebreaker. One projection carries the
// like count, the viewer's like membership and the author identity, so no
// per-comment re-fetch is ever needed.
func (r *commentRepository) ListByPost(ctx context.Context, postID, viewerID int64) ([]model.CommentView, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.fixed, c.created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar_url,
		       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count,
		       EXISTS(SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $2) AS liked_by_viewer
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.fixed DESC, c.created_at ASC, c.id ASC
	`
	var comments []model.CommentView
	err := r.db.SelectContext(ctx, &comments, query, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
