package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"socialfeed/internal/model"
)

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockPostRepository{})

	req := &model.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "securepassword123",
		Bio:      "hello",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}

	// Password must be hashed, never stored as given
	if user.PasswordHashed == req.Password {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockPostRepository{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "taken",
		Email:    "test@example.com",
		Password: "securepassword123",
	})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got: %v", err)
	}
}

func TestUserService_Register_InvalidInput(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockFollowRepository{}, &mockPostRepository{})

	cases := []struct {
		name string
		req  model.RegisterRequest
	}{
		{"short username", model.RegisterRequest{Username: "ab", Email: "a@b.com", Password: "securepassword123"}},
		{"bad email", model.RegisterRequest{Username: "validname", Email: "not-an-email", Password: "securepassword123"}},
		{"short password", model.RegisterRequest{Username: "validname", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), &tc.req); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 1, Username: username, PasswordHashed: string(hash)}, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockPostRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "testuser", Password: "wrongpassword"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestUserService_Login_UnknownUserSameError(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockFollowRepository{}, &mockPostRepository{})

	// Unknown usernames yield the same error as a bad password
	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "ghost", Password: "whatever"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestUserService_GetProfile(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 2, Username: username}, nil
		},
	}
	followRepo := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			return followerID == 1 && followeeID == 2, nil
		},
		countFollowersFn: func(ctx context.Context, userID int64) (int, error) { return 3, nil },
		countFollowingFn: func(ctx context.Context, userID int64) (int, error) { return 4, nil },
	}
	postRepo := &mockPostRepository{
		getUserPostsFn: func(ctx context.Context, userID int64) ([]model.Post, error) {
			return []model.Post{{ID: 10, UserID: userID}}, nil
		},
	}
	svc := NewUserService(mockRepo, followRepo, postRepo)

	profile, err := svc.GetProfile(context.Background(), "bob", 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !profile.IsFollowing {
		t.Error("expected is_following=true")
	}
	if profile.FollowerCount != 3 || profile.FollowingCount != 4 {
		t.Errorf("counts = %d/%d, want 3/4", profile.FollowerCount, profile.FollowingCount)
	}
	if len(profile.Posts) != 1 {
		t.Errorf("posts = %d, want 1", len(profile.Posts))
	}
}
