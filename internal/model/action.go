package model

import "errors"

// The string-keyed payloads ({action, object, ...}) are decoded once at the
// HTTP boundary into the closed variants below; unknown tags are rejected
// before any store access.

// RelationshipAction is a closed variant of relationship mutations.
type RelationshipAction int

const (
	ActionFollowUnfollow RelationshipAction = iota + 1
	ActionRemoveFollower
)

// ParseRelationshipAction maps the wire tag onto the closed variant.
func ParseRelationshipAction(s string) (RelationshipAction, error) {
	switch s {
	case "follow-unfollow":
		return ActionFollowUnfollow, nil
	case "remove-follower":
		return ActionRemoveFollower, nil
	default:
		return 0, ErrInvalidAction
	}
}

func (a RelationshipAction) String() string {
	switch a {
	case ActionFollowUnfollow:
		return "follow-unfollow"
	case ActionRemoveFollower:
		return "remove-follower"
	default:
		return "unknown"
	}
}

// LikeObject selects the target entity of a like toggle.
type LikeObject int

const (
	LikeObjectPost LikeObject = iota + 1
	LikeObjectComment
)

// ParseLikeObject maps the wire tag onto the closed variant.
func ParseLikeObject(s string) (LikeObject, error) {
	switch s {
	case "post":
		return LikeObjectPost, nil
	case "comment":
		return LikeObjectComment, nil
	default:
		return 0, ErrInvalidLikeObject
	}
}

func (o LikeObject) String() string {
	switch o {
	case LikeObjectPost:
		return "post"
	case LikeObjectComment:
		return "comment"
	default:
		return "unknown"
	}
}

// ToggleLikeRequest is the request body for the like toggle endpoint.
// ObjectID is a pointer so a missing key can be told apart from zero.
type ToggleLikeRequest struct {
	Object   string `json:"object"`
	ObjectID *int64 `json:"objID"`
}

// LikeResult is returned by the toggle engine: the new liked state plus the
// refreshed total.
type LikeResult struct {
	ID         int64  `json:"id"`
	Object     string `json:"object"`
	Liked      bool   `json:"liked"`
	TotalLikes int    `json:"total_likes"`
}

var (
	ErrInvalidAction     = errors.New("invalid 'action' tag in request")
	ErrInvalidLikeObject = errors.New("invalid 'object' tag in request")
	ErrMissingObjectID   = errors.New("missing 'objID' key in request")
)
