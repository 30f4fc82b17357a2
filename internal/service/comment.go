package service

import (
	"context"
	"fmt"

	"socialfeed/internal/model"
	"socialfeed/internal/repository"
)

// CommentService handles the comment engine: appending comments and serving
// the canonical ordered list.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Add appends a comment to a post and returns the post's full refreshed
// comment list in canonical order. Empty content is accepted; only a missing
// text key is rejected, and that happens at the HTTP boundary.
func (s *CommentService) Add(ctx context.Context, postID, viewerID int64, content string) ([]model.CommentView, error) {
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	if err := s.checkPostVisible(ctx, postID, viewerID); err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.Create(ctx, postID, viewerID, content); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return s.commentRepo.ListByPost(ctx, postID, viewerID)
}

// List returns the post's comments in canonical order, enriched for the
// viewer.
func (s *CommentService) List(ctx context.Context, postID, viewerID int64) ([]model.CommentView, error) {
	if err := s.checkPostVisible(ctx, postID, viewerID); err != nil {
		return nil, err
	}

	return s.commentRepo.ListByPost(ctx, postID, viewerID)
}

// checkPostVisible applies the same visibility rule as post reads: an
// unpublished post reads as missing for everyone except its author.
func (s *CommentService) checkPostVisible(ctx context.Context, postID, viewerID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.Published && post.UserID != viewerID {
		return model.ErrPostNotFound
	}
	return nil
}

// GetByID returns one comment.
func (s *CommentService) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}
