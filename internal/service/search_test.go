package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialfeed/internal/model"
)

func strPtr(s string) *string { return &s }

func summaries(usernames ...string) []model.UserSummary {
	out := make([]model.UserSummary, len(usernames))
	for i, name := range usernames {
		out[i] = model.UserSummary{ID: int64(i + 1), Username: name}
	}
	return out
}

func newSearchService(userRepo *mockUserRepository, followRepo *mockFollowRepository, postLikes, commentLikes *mockLikeSet) *SearchService {
	if userRepo == nil {
		userRepo = &mockUserRepository{}
	}
	if followRepo == nil {
		followRepo = &mockFollowRepository{}
	}
	if postLikes == nil {
		postLikes = newMockLikeSet(model.ErrPostNotFound)
	}
	if commentLikes == nil {
		commentLikes = newMockLikeSet(model.ErrCommentNotFound)
	}
	return NewSearchService(userRepo, followRepo, postLikes, commentLikes)
}

func TestSearchService_AllUsers_EmptyQueryReturnsNothing(t *testing.T) {
	searched := false
	userRepo := &mockUserRepository{
		searchFn: func(ctx context.Context, substring string) ([]model.UserSummary, error) {
			searched = true
			return summaries("anyone"), nil
		},
	}
	svc := newSearchService(userRepo, nil, nil, nil)

	users, err := svc.Search(context.Background(), 1, model.ScopeAllUsers, nil, "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty result for empty query, got %d users", len(users))
	}
	if searched {
		t.Error("store should not be queried for an empty all-users search")
	}
}

func TestSearchService_AllUsers_SubstringMatch(t *testing.T) {
	// The repository does the matching in SQL; here we verify the service
	// passes the query through and annotates the results.
	userRepo := &mockUserRepository{
		searchFn: func(ctx context.Context, substring string) ([]model.UserSummary, error) {
			all := summaries("testuser0", "testuser1", "testuser2", "testuser3", "testuser4")
			var matched []model.UserSummary
			for _, u := range all {
				if strings.Contains(u.Username, substring) {
					matched = append(matched, u)
				}
			}
			return matched, nil
		},
	}
	followRepo := &mockFollowRepository{
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{3: true}, nil
		},
	}
	svc := newSearchService(userRepo, followRepo, nil, nil)

	users, err := svc.Search(context.Background(), 1, model.ScopeAllUsers, nil, "2")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(users) != 1 || users[0].Username != "testuser2" {
		t.Fatalf("expected [testuser2], got %v", users)
	}
	if !users[0].IsFollowing {
		t.Error("expected is_following annotation from batch check")
	}
	if users[0].ProfileURL != "/users/testuser2" {
		t.Errorf("profile_url = %q, want %q", users[0].ProfileURL, "/users/testuser2")
	}
}

func TestSearchService_Following_ResolvesTargetUsername(t *testing.T) {
	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: 7, Username: "alice"}, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	var gotUserID int64
	followRepo := &mockFollowRepository{
		searchFollowingFn: func(ctx context.Context, userID int64, substring string) ([]model.UserSummary, error) {
			gotUserID = userID
			return summaries("bob"), nil
		},
	}
	svc := newSearchService(userRepo, followRepo, nil, nil)

	users, err := svc.Search(context.Background(), 1, model.ScopeFollowing, strPtr("alice"), "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if gotUserID != 7 {
		t.Errorf("search anchored on user %d, want 7", gotUserID)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestSearchService_Following_UnknownTarget(t *testing.T) {
	svc := newSearchService(nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), 1, model.ScopeFollowing, strPtr("ghost"), "")
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestSearchService_MissingTarget(t *testing.T) {
	svc := newSearchService(nil, nil, nil, nil)

	for _, scope := range []model.SearchScope{
		model.ScopeFollowing,
		model.ScopeFollowers,
		model.ScopePostLikes,
		model.ScopeCommentLikes,
	} {
		_, err := svc.Search(context.Background(), 1, scope, nil, "")
		if !errors.Is(err, model.ErrMissingSearchTarget) {
			t.Errorf("scope %s: expected ErrMissingSearchTarget, got: %v", scope, err)
		}
	}
}

func TestSearchService_PostLikes(t *testing.T) {
	postLikes := newMockLikeSet(model.ErrPostNotFound, 42)
	postLikes.searchLikersFn = func(ctx context.Context, targetID int64, substring string) ([]model.UserSummary, error) {
		if targetID != 42 {
			t.Errorf("target id = %d, want 42", targetID)
		}
		return summaries("carol"), nil
	}
	svc := newSearchService(nil, nil, postLikes, nil)

	users, err := svc.Search(context.Background(), 1, model.ScopePostLikes, strPtr("42"), "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(users) != 1 || users[0].Username != "carol" {
		t.Fatalf("expected [carol], got %v", users)
	}
}

func TestSearchService_PostLikes_NonNumericTarget(t *testing.T) {
	svc := newSearchService(nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), 1, model.ScopePostLikes, strPtr("not-a-number"), "")
	if !errors.Is(err, model.ErrInvalidSearchTarget) {
		t.Errorf("expected ErrInvalidSearchTarget, got: %v", err)
	}
}

func TestSearchService_CommentLikes_MissingTargetObject(t *testing.T) {
	svc := newSearchService(nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), 1, model.ScopeCommentLikes, strPtr("999"), "")
	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("expected ErrCommentNotFound, got: %v", err)
	}
}

func TestSearchService_InvalidScope(t *testing.T) {
	svc := newSearchService(nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), 1, model.SearchScope(0), strPtr("x"), "x")
	if !errors.Is(err, model.ErrInvalidSearchScope) {
		t.Errorf("expected ErrInvalidSearchScope, got: %v", err)
	}
}
