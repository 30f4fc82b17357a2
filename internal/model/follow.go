package model

import (
	"errors"
	"time"
)

// Follow is one directed edge of the asymmetric follow relation.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RelationshipResult is returned after any relationship mutation so UI
// counters for the page user stay consistent.
type RelationshipResult struct {
	IsFollowing    bool `json:"is_following"`
	FollowerCount  int  `json:"followers"`
	FollowingCount int  `json:"following"`
}

// RelationshipRequest is the request body for relationship actions.
// Target is a pointer so a missing key can be told apart from an empty value.
type RelationshipRequest struct {
	Action string  `json:"action"`
	Target *string `json:"target"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrMissingTarget    = errors.New("missing 'target' key in request")
)
