package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
	"socialfeed/internal/repository"
)

// LikeService is the toggle engine over the two like sets. Posts and
// comments share one code path; the object tag picks the repository.
type LikeService struct {
	postLikes    repository.LikeSetRepository
	commentLikes repository.LikeSetRepository
	db           *sqlx.DB
}

func NewLikeService(postLikes, commentLikes repository.LikeSetRepository, db *sqlx.DB) *LikeService {
	return &LikeService{
		postLikes:    postLikes,
		commentLikes: commentLikes,
		db:           db,
	}
}

// Toggle flips the viewer's membership in the target's like set and returns
// the new state with a refreshed total. Toggling twice restores the original
// state.
func (s *LikeService) Toggle(ctx context.Context, object model.LikeObject, targetID, viewerID int64) (*model.LikeResult, error) {
	repo, err := s.repoFor(object)
	if err != nil {
		return nil, err
	}

	exists, err := repo.TargetExists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return nil, repo.NotFoundErr()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	liked, err := repo.Exists(ctx, tx, targetID, viewerID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = repo.Remove(ctx, tx, targetID, viewerID)
	} else {
		err = repo.Add(ctx, tx, targetID, viewerID)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	total, err := repo.Count(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	return &model.LikeResult{
		ID:         targetID,
		Object:     object.String(),
		Liked:      !liked,
		TotalLikes: total,
	}, nil
}

// Count returns the target's like total.
func (s *LikeService) Count(ctx context.Context, object model.LikeObject, targetID int64) (int, error) {
	repo, err := s.repoFor(object)
	if err != nil {
		return 0, err
	}

	exists, err := repo.TargetExists(ctx, targetID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, repo.NotFoundErr()
	}

	return repo.Count(ctx, targetID)
}

func (s *LikeService) repoFor(object model.LikeObject) (repository.LikeSetRepository, error) {
	switch object {
	case model.LikeObjectPost:
		return s.postLikes, nil
	case model.LikeObjectComment:
		return s.commentLikes, nil
	default:
		return nil, model.ErrInvalidLikeObject
	}
}
