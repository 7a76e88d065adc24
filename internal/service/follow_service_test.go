package service

import (
	"context"
	"errors"
	"testing"

	"buzzsway/internal/models"
)

func TestFollowServiceToggleSelf(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())
	_, err := svc.Toggle(context.Background(), 3, 3)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestFollowServiceToggleMissingTarget(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", 99)
	}

	svc := NewFollowService(noopFollowRepo(), users)
	_, err := svc.Toggle(context.Background(), 1, 99)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found app error, got %#v", err)
	}
}

func TestFollowServiceToggleTwiceRestoresOriginalState(t *testing.T) {
	following := false
	repo := noopFollowRepo()
	repo.isFollowingFn = func(context.Context, uint, uint) (bool, error) { return following, nil }
	repo.followFn = func(context.Context, uint, uint) error { following = true; return nil }
	repo.unfollowFn = func(context.Context, uint, uint) error { following = false; return nil }

	svc := NewFollowService(repo, noopUserRepo())
	ctx := context.Background()

	now, err := svc.Toggle(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !now {
		t.Fatal("first toggle should follow")
	}

	now, err = svc.Toggle(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if now {
		t.Fatal("second toggle should unfollow")
	}
	if following {
		t.Fatal("edge should be gone after a double toggle")
	}
}

func TestFollowServiceToggleUsesEdgeDirection(t *testing.T) {
	var gotFollower, gotFollowee uint
	repo := noopFollowRepo()
	repo.followFn = func(_ context.Context, followerID, followeeID uint) error {
		gotFollower, gotFollowee = followerID, followeeID
		return nil
	}

	svc := NewFollowService(repo, noopUserRepo())
	if _, err := svc.Toggle(context.Background(), 7, 8); err != nil {
		t.Fatal(err)
	}
	if gotFollower != 7 || gotFollowee != 8 {
		t.Fatalf("edge direction wrong: got (%d, %d)", gotFollower, gotFollowee)
	}
}

func TestFollowServiceMessagedFollowers(t *testing.T) {
	var gotUserID uint
	repo := noopFollowRepo()
	repo.messagedFollowersFn = func(_ context.Context, userID uint) ([]models.User, error) {
		gotUserID = userID
		return []models.User{{ID: 2, Username: "bob"}}, nil
	}

	svc := NewFollowService(repo, noopUserRepo())
	users, err := svc.MessagedFollowers(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if gotUserID != 1 {
		t.Fatalf("queried for user %d, want 1", gotUserID)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("unexpected result: %#v", users)
	}

	repo.messagedFollowersFn = func(context.Context, uint) ([]models.User, error) {
		return nil, errors.New("connection refused")
	}
	_, err = svc.MessagedFollowers(context.Background(), 1)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected internal app error, got %#v", err)
	}
}
