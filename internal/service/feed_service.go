package service

import (
	"context"

	"buzzsway/internal/cache"
	"buzzsway/internal/models"
	"buzzsway/internal/repository"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedService assembles read-only post feeds. All counts come denormalized
// from the repository query; the service never mutates anything.
type FeedService struct {
	postRepo repository.PostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// Global returns all posts newest first with author and counts attached.
// Anonymous pages (currentUserID 0) are served from a short-TTL cache since
// they are identical for every caller.
func (s *FeedService) Global(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit = clampFeedLimit(limit)
	if offset < 0 {
		offset = 0
	}

	if currentUserID == 0 {
		var posts []*models.Post
		key := cache.GlobalFeedKey(limit, offset)
		err := cache.CacheAside(ctx, key, &posts, cache.GlobalFeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, limit, offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return posts, nil
	}

	posts, err := s.postRepo.List(ctx, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ForUser returns one user's posts newest first, comments populated with
// their authors.
func (s *FeedService) ForUser(ctx context.Context, ownerID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit = clampFeedLimit(limit)
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.GetByUserID(ctx, ownerID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func clampFeedLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}
