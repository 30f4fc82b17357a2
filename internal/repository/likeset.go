package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
)

// likeSetRepository implements LikeSetRepository for one membership table.
// Post likes and comment likes share this implementation; only the table and
// column names differ, fixed at construction. The queries are assembled once
// here from those constants, never from request data.
type likeSetRepository struct {
	db       *sqlx.DB
	notFound error

	existsTargetQuery string
	existsQuery       string
	addQuery          string
	removeQuery       string
	countQuery        string
	searchQuery       string
}

// NewPostLikeRepository returns the like set over post_likes. Only published
// posts are valid targets; unpublished ones behave as missing.
func NewPostLikeRepository(db *sqlx.DB) LikeSetRepository {
	return newLikeSetRepository(db, "post_likes", "post_id",
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND published)`,
		model.ErrPostNotFound)
}

// NewCommentLikeRepository returns the like set over comment_likes.
func NewCommentLikeRepository(db *sqlx.DB) LikeSetRepository {
	return newLikeSetRepository(db, "comment_likes", "comment_id",
		`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`,
		model.ErrCommentNotFound)
}

func newLikeSetRepository(db *sqlx.DB, table, targetCol, existsTargetQuery string, notFound error) LikeSetRepository {
	return &likeSetRepository{
		db:                db,
		notFound:          notFound,
		existsTargetQuery: existsTargetQuery,
		existsQuery: fmt.Sprintf(
			`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND user_id = $2)`, table, targetCol),
		// ON CONFLICT keeps set semantics even if two adds race past the
		// membership check.
		addQuery: fmt.Sprintf(
			`INSERT INTO %s (%s, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, targetCol),
		removeQuery: fmt.Sprintf(
			`DELETE FROM %s WHERE %s = $1 AND user_id = $2`, table, targetCol),
		countQuery: fmt.Sprintf(
			`SELECT COUNT(*) FROM %s WHERE %s = $1`, table, targetCol),
		searchQuery: fmt.Sprintf(`
			SELECT u.id, u.username, u.bio, u.avatar_url
			FROM %s l
			JOIN users u ON u.id = l.user_id
			WHERE l.%s = $1 AND u.username LIKE '%%' || $2 || '%%' ESCAPE '\'
			ORDER BY u.id`, table, targetCol),
	}
}

func (r *likeSetRepository) TargetExists(ctx context.Context, targetID int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.existsTargetQuery, targetID); err != nil {
		return false, fmt.Errorf("failed to check like target: %w", err)
	}
	return exists, nil
}

func (r *likeSetRepository) Exists(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists, r.existsQuery, targetID, userID); err != nil {
		return false, fmt.Errorf("failed to check like membership: %w", err)
	}
	return exists, nil
}

func (r *likeSetRepository) Add(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error {
	if _, err := tx.ExecContext(ctx, r.addQuery, targetID, userID); err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

func (r *likeSetRepository) Remove(ctx context.Context, tx *sqlx.Tx, targetID, userID int64) error {
	if _, err := tx.ExecContext(ctx, r.removeQuery, targetID, userID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

func (r *likeSetRepository) Count(ctx context.Context, targetID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.countQuery, targetID); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *likeSetRepository) SearchLikers(ctx context.Context, targetID int64, substring string) ([]model.UserSummary, error) {
	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, r.searchQuery, targetID, escapeLike(substring))
	if err != nil {
		return nil, fmt.Errorf("failed to search likers: %w", err)
	}
	return users, nil
}

func (r *likeSetRepository) NotFoundErr() error {
	return r.notFound
}
