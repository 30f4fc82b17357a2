package service

import (
	"context"
	"fmt"
	"log"

	"socialfeed/internal/model"
	"socialfeed/internal/queue"
	"socialfeed/internal/repository"
)

// PostService handles post lifecycle and detail pages.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	publisher   queue.Publisher
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, publisher queue.Publisher) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

// Create stores a new post. Published defaults to true; an unpublished post
// stays invisible to everyone but its author and never reaches follower
// feeds.
func (s *PostService) Create(ctx context.Context, userID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if req.Description != nil && len(*req.Description) > model.MaxPostDescriptionLength {
		return nil, model.ErrDescriptionTooLong
	}

	post := &model.Post{
		UserID:      userID,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Published:   true,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if post.Published {
		s.publish(ctx, queue.NewPostCreatedEvent(post.ID, userID))
	}

	return post, nil
}

// GetByID returns a post. Unpublished posts read as missing for everyone
// except their author.
func (s *PostService) GetByID(ctx context.Context, postID, viewerID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.Published && post.UserID != viewerID {
		return nil, model.ErrPostNotFound
	}

	return post, nil
}

// GetDetail returns a post with its full ordered comment list.
func (s *PostService) GetDetail(ctx context.Context, postID, viewerID int64) (*model.PostDetailResponse, error) {
	post, err := s.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return &model.PostDetailResponse{
		Post:     post,
		Comments: comments,
	}, nil
}

// Delete removes a post its owner no longer wants. Dependent comments and
// likes go with it via cascading foreign keys.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}

	s.publish(ctx, queue.NewPostDeletedEvent(postID, userID))
	return nil
}

// GetUserPosts returns a user's published posts with engagement counts.
func (s *PostService) GetUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	return s.postRepo.GetUserPosts(ctx, userID)
}

func (s *PostService) publish(ctx context.Context, event queue.FeedEvent) {
	if s.publisher == nil {
		return
	}
	msgID, err := s.publisher.Publish(ctx, queue.StreamFeed, event)
	if err != nil {
		log.Printf("[PostService] Failed to publish %s: err=%v", event.Type, err)
		return
	}
	log.Printf("[PostService] Published %s: msgID=%s", event.Type, msgID)
}
