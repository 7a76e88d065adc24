package service

import (
	"context"

	"buzzsway/internal/models"
	"buzzsway/internal/repository"
)

// FollowService manages the follower graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Toggle follows targetID if actorID does not yet follow them, otherwise
// unfollows. Returns whether the actor is following after the call. Both
// directions of the relationship change together because the edge is a
// single row.
func (s *FollowService) Toggle(ctx context.Context, actorID, targetID uint) (bool, error) {
	if actorID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.followRepo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return false, models.NewInternalError(err)
	}

	if following {
		if err := s.followRepo.Unfollow(ctx, actorID, targetID); err != nil {
			return false, models.NewInternalError(err)
		}
		return false, nil
	}

	if err := s.followRepo.Follow(ctx, actorID, targetID); err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// Following returns the users actorID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Followers returns the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// MessagedFollowers returns the followers of userID who have sent them at
// least one direct message.
func (s *FollowService) MessagedFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.followRepo.MessagedFollowers(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
