package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. Fixed comments sort ahead of all
// others regardless of timestamp.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	Fixed     bool      `db:"fixed" json:"fixed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CommentView is a comment enriched for display: like membership and count
// for the viewer plus author identity.
type CommentView struct {
	Comment
	LikeCount       int     `db:"like_count" json:"like_count"`
	LikedByViewer   bool    `db:"liked_by_viewer" json:"liked_by_viewer"`
	AuthorUsername  string  `db:"author_username" json:"author_username"`
	AuthorAvatarURL *string `db:"author_avatar_url" json:"author_avatar_url"`
}

// CommentListResponse is the full ordered comment list for a post.
type CommentListResponse struct {
	Comments []CommentView `json:"comments"`
}

// CreateCommentRequest is the request body for creating a comment. Text is a
// pointer so a missing key can be told apart from an empty string.
type CreateCommentRequest struct {
	Text *string `json:"text"`
}

// MaxCommentLength caps comment content.
const MaxCommentLength = 2200

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrTextRequired    = errors.New("missing 'text' key in request")
	ErrContentTooLong  = errors.New("comment content too long")
)
