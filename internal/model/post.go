package model

import (
	"errors"
	"time"
)

// Post represents a user's post. LikeCount, CommentCount and IsLiked are
// projection fields filled by enriched queries, not columns on the posts row.
type Post struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ImageURL    *string   `db:"image_url" json:"image_url"`
	Description *string   `db:"description" json:"description"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	LikeCount    int  `db:"like_count" json:"like_count"`
	CommentCount int  `db:"comment_count" json:"comment_count"`
	IsLiked      bool `db:"is_liked" json:"is_liked"`
}

// FeedPost is a post enriched for home-feed display.
type FeedPost struct {
	Post
	AuthorUsername  string  `db:"author_username" json:"author_username"`
	AuthorAvatarURL *string `db:"author_avatar_url" json:"author_avatar_url"`
}

// FeedResponse is the home feed payload.
type FeedResponse struct {
	Posts []FeedPost `json:"posts"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Published   *bool   `json:"published"`
}

// PostDetailResponse is a single post with its ordered comment list.
type PostDetailResponse struct {
	Post     *Post         `json:"post"`
	Comments []CommentView `json:"comments"`
}

const (
	// MaxPostDescriptionLength caps the description text.
	MaxPostDescriptionLength = 2200

	// FeedDefaultLimit bounds the home feed when no limit is given.
	FeedDefaultLimit = 25
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrNotPostOwner       = errors.New("not the owner of this post")
	ErrDescriptionTooLong = errors.New("description too long")
)
