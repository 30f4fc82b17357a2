package service

import (
	"context"
	"fmt"
	"strconv"

	"socialfeed/internal/model"
	"socialfeed/internal/repository"
)

// SearchService resolves relationship-scoped user searches. Every scope is a
// username substring filter over a different base set: the whole user table,
// a user's following or followers, or the like set of a post or comment.
type SearchService struct {
	userRepo     repository.UserRepository
	followRepo   repository.FollowRepository
	postLikes    repository.LikeSetRepository
	commentLikes repository.LikeSetRepository
}

func NewSearchService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postLikes, commentLikes repository.LikeSetRepository,
) *SearchService {
	return &SearchService{
		userRepo:     userRepo,
		followRepo:   followRepo,
		postLikes:    postLikes,
		commentLikes: commentLikes,
	}
}

// Search runs a scoped username search for the viewer. target carries the
// scope anchor (a username for follow scopes, an object id for like scopes)
// and must be present for every scope except the all-users one. Matching is
// a case-sensitive substring test; results come back in store order with the
// viewer's follow relationship annotated.
func (s *SearchService) Search(ctx context.Context, viewerID int64, scope model.SearchScope, target *string, query string) ([]model.UserSummary, error) {
	if scope.RequiresTarget() && target == nil {
		return nil, model.ErrMissingSearchTarget
	}

	var (
		users []model.UserSummary
		err   error
	)

	switch scope {
	case model.ScopeAllUsers:
		// Empty query over the whole user base returns nothing rather than
		// everyone.
		if query == "" {
			return []model.UserSummary{}, nil
		}
		users, err = s.userRepo.Search(ctx, query)

	case model.ScopeFollowing:
		var anchor *model.User
		anchor, err = s.resolveUser(ctx, *target)
		if err == nil {
			users, err = s.followRepo.SearchFollowing(ctx, anchor.ID, query)
		}

	case model.ScopeFollowers:
		var anchor *model.User
		anchor, err = s.resolveUser(ctx, *target)
		if err == nil {
			users, err = s.followRepo.SearchFollowers(ctx, anchor.ID, query)
		}

	case model.ScopePostLikes:
		users, err = s.searchLikers(ctx, s.postLikes, *target, query)

	case model.ScopeCommentLikes:
		users, err = s.searchLikers(ctx, s.commentLikes, *target, query)

	default:
		return nil, model.ErrInvalidSearchScope
	}

	if err != nil {
		return nil, err
	}

	return s.annotate(ctx, viewerID, users)
}

func (s *SearchService) resolveUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SearchService) searchLikers(ctx context.Context, likes repository.LikeSetRepository, target, query string) ([]model.UserSummary, error) {
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return nil, model.ErrInvalidSearchTarget
	}

	exists, err := likes.TargetExists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("check like target: %w", err)
	}
	if !exists {
		return nil, likes.NotFoundErr()
	}

	return likes.SearchLikers(ctx, targetID, query)
}

// annotate batch-checks the viewer's follow edges against every result row
// and fills the presentation fields.
func (s *SearchService) annotate(ctx context.Context, viewerID int64, users []model.UserSummary) ([]model.UserSummary, error) {
	if len(users) == 0 {
		return []model.UserSummary{}, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	following, err := s.followRepo.CheckFollows(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("check follows: %w", err)
	}

	for i := range users {
		users[i].IsFollowing = following[users[i].ID]
		users[i].ProfileURL = "/users/" + users[i].Username
	}

	return users, nil
}
