package service

import (
	"context"
	"errors"
	"testing"

	"buzzsway/internal/models"

	"gorm.io/gorm"
)

func TestPostServiceCreateRequiresMedia(t *testing.T) {
	svc := NewPostService(noopPostRepo(), nil)
	_, err := svc.Create(context.Background(), CreatePostInput{UserID: 1, Caption: "no media"})
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestPostServiceToggleLikeMissingPost(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, uint, uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewPostService(repo, nil)
	_, _, err := svc.ToggleLike(context.Background(), 1, 99)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found app error, got %#v", err)
	}
}

func TestPostServiceToggleLikeParity(t *testing.T) {
	liked := false
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, uint, uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 2, Liked: liked}, nil
	}
	repo.isLikedFn = func(context.Context, uint, uint) (bool, error) { return liked, nil }
	repo.likeFn = func(context.Context, uint, uint) error { liked = true; return nil }
	repo.unlikeFn = func(context.Context, uint, uint) error { liked = false; return nil }

	svc := NewPostService(repo, nil)
	ctx := context.Background()

	// An even number of toggles must restore the original state.
	for i := 0; i < 4; i++ {
		want := i%2 == 0
		_, nowLiked, err := svc.ToggleLike(ctx, 1, 5)
		if err != nil {
			t.Fatal(err)
		}
		if nowLiked != want {
			t.Fatalf("toggle %d: liked = %v, want %v", i, nowLiked, want)
		}
	}
	if liked {
		t.Fatal("like must be gone after an even number of toggles")
	}
}

func TestPostServiceDeleteForbiddenForNonOwner(t *testing.T) {
	deleted := false
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, uint, uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 2}, nil
	}
	repo.deleteFn = func(context.Context, uint) error { deleted = true; return nil }

	svc := NewPostService(repo, nil)
	err := svc.Delete(context.Background(), 3, 5)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
	if deleted {
		t.Fatal("post must not be deleted by a non-owner")
	}
}

func TestPostServiceDeleteReleasesMediaBestEffort(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, uint, uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 3, MediaURL: "/media/not-a-valid-hash/blob.webp"}, nil
	}

	// The media URL is malformed so Remove fails; the delete must still
	// succeed because the row is already gone.
	svc := NewPostService(repo, NewMediaService(nil))
	if err := svc.Delete(context.Background(), 3, 5); err != nil {
		t.Fatalf("media release failure must not propagate: %v", err)
	}
}
