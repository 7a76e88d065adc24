package service

import (
	"context"
	"errors"

	"buzzsway/internal/middleware"
	"buzzsway/internal/models"
	"buzzsway/internal/repository"

	"gorm.io/gorm"
)

// PostService provides post business logic: creation, deletion and the
// like toggle.
type PostService struct {
	postRepo repository.PostRepository
	media    *MediaService
}

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	UserID   uint
	MediaURL string
	Caption  string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, media *MediaService) *PostService {
	return &PostService{postRepo: postRepo, media: media}
}

// Create persists a new post. The media blob must already be stored; posts
// without media are rejected.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if in.MediaURL == "" {
		return nil, models.NewValidationError("Post media is required")
	}

	post := &models.Post{
		UserID:   in.UserID,
		MediaURL: in.MediaURL,
		Caption:  in.Caption,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, post.ID, in.UserID)
}

// Delete removes a post with its likes and comments. Only the owner may
// delete. The media blob is released afterwards on a best-effort basis; a
// release failure is logged and not propagated since the post row is gone.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.get(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}

	if s.media != nil && post.MediaURL != "" {
		if err := s.media.Remove(post.MediaURL); err != nil {
			middleware.Logger.Warn("failed to release media blob", "post_id", postID, "url", post.MediaURL, "error", err)
		}
	}
	return nil
}

// ToggleLike likes the post if the user has not liked it yet, otherwise
// removes the like. Returns the refreshed post and whether the user likes it
// after the call.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, bool, error) {
	if _, err := s.get(ctx, postID, userID); err != nil {
		return nil, false, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, false, models.NewInternalError(err)
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, false, models.NewInternalError(err)
		}
	}

	post, err := s.get(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}
	return post, !liked, nil
}

// GetByID returns a post with counts computed for the requesting user.
func (s *PostService) GetByID(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.get(ctx, postID, currentUserID)
}

func (s *PostService) get(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}
