package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
	"socialfeed/internal/queue"
	"socialfeed/internal/repository"
)

// GraphService owns the asymmetric follow relation: toggling edges, removing
// followers, and reporting relationship state.
type GraphService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	db         *sqlx.DB
	publisher  queue.Publisher
}

func NewGraphService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *GraphService {
	return &GraphService{
		followRepo: followRepo,
		userRepo:   userRepo,
		db:         db,
		publisher:  publisher,
	}
}

// HandleRelationship applies one relationship action from the viewer against
// the target user, then returns the viewer's relationship to pageUsername
// together with that page user's live counts. An empty pageUsername defaults
// to the target, which suits profile pages where both are the same account.
func (s *GraphService) HandleRelationship(ctx context.Context, viewerID int64, action model.RelationshipAction, targetUsername, pageUsername string) (*model.RelationshipResult, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	switch action {
	case model.ActionFollowUnfollow:
		if err := s.ToggleFollow(ctx, viewerID, target.ID); err != nil {
			return nil, err
		}
	case model.ActionRemoveFollower:
		if err := s.RemoveFollower(ctx, viewerID, target.ID); err != nil {
			return nil, err
		}
	default:
		return nil, model.ErrInvalidAction
	}

	pageUser := target
	if pageUsername != "" && pageUsername != targetUsername {
		pageUser, err = s.userRepo.GetByUsername(ctx, pageUsername)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.Relationship(ctx, viewerID, pageUser.ID)
	if err != nil {
		return nil, err
	}

	// is_following always reflects the viewer's relation to the action's
	// target; only the counters belong to the page user.
	if pageUser.ID != target.ID {
		result.IsFollowing, err = s.IsFollowing(ctx, viewerID, target.ID)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ToggleFollow adds the viewer->target edge when absent and removes it when
// present. Self-follow is rejected before any store access.
func (s *GraphService) ToggleFollow(ctx context.Context, viewerID, targetID int64) error {
	if viewerID == targetID {
		return model.ErrCannotFollowSelf
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Insert-or-nothing decides the direction: a conflicting insert means the
	// edge existed, so the toggle removes it instead.
	inserted, err := s.followRepo.Create(ctx, tx, viewerID, targetID)
	if err != nil {
		return err
	}
	if !inserted {
		if _, err := s.followRepo.Delete(ctx, tx, viewerID, targetID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Publish after commit so workers never see an edge that rolled back.
	if inserted {
		s.publish(ctx, queue.NewUserFollowedEvent(viewerID, targetID))
	} else {
		s.publish(ctx, queue.NewUserUnfollowedEvent(viewerID, targetID))
	}

	return nil
}

// RemoveFollower removes the target->viewer edge: the viewer ejects target
// from their follower set. Removing an absent edge is a no-op.
func (s *GraphService) RemoveFollower(ctx context.Context, viewerID, targetID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed, err := s.followRepo.Delete(ctx, tx, targetID, viewerID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if removed {
		s.publish(ctx, queue.NewUserUnfollowedEvent(targetID, viewerID))
	}

	return nil
}

// Relationship reports whether the viewer follows the user plus the user's
// live follower and following counts.
func (s *GraphService) Relationship(ctx context.Context, viewerID, userID int64) (*model.RelationshipResult, error) {
	isFollowing := false
	if viewerID != userID {
		var err error
		isFollowing, err = s.followRepo.Exists(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
	}

	followerCount, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}

	followingCount, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.RelationshipResult{
		IsFollowing:    isFollowing,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
	}, nil
}

// RelationshipByUsername resolves the username and reports the viewer's
// relationship to that user.
func (s *GraphService) RelationshipByUsername(ctx context.Context, viewerID int64, username string) (*model.RelationshipResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Relationship(ctx, viewerID, user.ID)
}

// IsFollowing reports whether follower follows followee.
func (s *GraphService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *GraphService) publish(ctx context.Context, event queue.FeedEvent) {
	if s.publisher == nil {
		return
	}
	msgID, err := s.publisher.Publish(ctx, queue.StreamFeed, event)
	if err != nil {
		log.Printf("[GraphService] Failed to publish %s: err=%v", event.Type, err)
		return
	}
	log.Printf("[GraphService] Published %s: msgID=%s", event.Type, msgID)
}
