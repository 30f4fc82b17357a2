package model

import "errors"

// SearchScope is the relational lens through which a user search resolves.
type SearchScope int

const (
	ScopeAllUsers SearchScope = iota + 1
	ScopeFollowing
	ScopeFollowers
	ScopePostLikes
	ScopeCommentLikes
)

// ParseSearchScope maps the wire tag onto the closed variant.
func ParseSearchScope(s string) (SearchScope, error) {
	switch s {
	case "all_users":
		return ScopeAllUsers, nil
	case "following":
		return ScopeFollowing, nil
	case "followers":
		return ScopeFollowers, nil
	case "post_likes":
		return ScopePostLikes, nil
	case "comment_likes":
		return ScopeCommentLikes, nil
	default:
		return 0, ErrInvalidSearchScope
	}
}

// RequiresTarget reports whether the scope needs a scope target (username or
// object id). Only the all-users scope searches the whole user base.
func (s SearchScope) RequiresTarget() bool {
	return s != ScopeAllUsers
}

func (s SearchScope) String() string {
	switch s {
	case ScopeAllUsers:
		return "all_users"
	case ScopeFollowing:
		return "following"
	case ScopeFollowers:
		return "followers"
	case ScopePostLikes:
		return "post_likes"
	case ScopeCommentLikes:
		return "comment_likes"
	default:
		return "unknown"
	}
}

// SearchResponse is the search endpoint envelope. The show_* flags tell the
// consumer which affordances to render for each row.
type SearchResponse struct {
	UserList         []UserSummary `json:"user_list"`
	ProfileUser      string        `json:"profile_user"`
	ShowBio          bool          `json:"show_bio"`
	ShowRelationship bool          `json:"show_relationship"`
	ShowRemove       bool          `json:"show_remove"`
}

var (
	ErrInvalidSearchScope  = errors.New("invalid search scope")
	ErrMissingSearchTarget = errors.New("missing search scope target")
	ErrInvalidSearchTarget = errors.New("invalid search scope target")
)
