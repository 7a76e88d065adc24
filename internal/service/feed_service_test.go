package service

import (
	"context"
	"testing"

	"buzzsway/internal/models"
)

func TestFeedServiceGlobalClampsLimit(t *testing.T) {
	var gotLimit, gotOffset int
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, limit, offset int, _ uint) ([]*models.Post, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	svc := NewFeedService(repo)
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", limit: 0, offset: -3, wantLimit: defaultFeedLimit, wantOffset: 0},
		{name: "capped", limit: 5000, offset: 10, wantLimit: maxFeedLimit, wantOffset: 10},
		{name: "passthrough", limit: 15, offset: 30, wantLimit: 15, wantOffset: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Global(ctx, tt.limit, tt.offset, 1); err != nil {
				t.Fatal(err)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Fatalf("got (%d, %d), want (%d, %d)", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestFeedServiceGlobalPassesViewer(t *testing.T) {
	var gotViewer uint
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, _, _ int, currentUserID uint) ([]*models.Post, error) {
		gotViewer = currentUserID
		return []*models.Post{{ID: 2}, {ID: 1}}, nil
	}

	svc := NewFeedService(repo)
	posts, err := svc.Global(context.Background(), 20, 0, 9)
	if err != nil {
		t.Fatal(err)
	}
	if gotViewer != 9 {
		t.Fatalf("viewer id not passed through, got %d", gotViewer)
	}
	if len(posts) != 2 || posts[0].ID != 2 {
		t.Fatalf("repository order must be preserved, got %#v", posts)
	}
}

func TestFeedServiceForUser(t *testing.T) {
	var gotOwner uint
	repo := noopPostRepo()
	repo.getByUserIDFn = func(_ context.Context, ownerID uint, _, _ int, _ uint) ([]*models.Post, error) {
		gotOwner = ownerID
		return []*models.Post{{ID: 3, UserID: ownerID}}, nil
	}

	svc := NewFeedService(repo)
	posts, err := svc.ForUser(context.Background(), 4, 20, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if gotOwner != 4 || len(posts) != 1 {
		t.Fatalf("unexpected result: owner %d, %d posts", gotOwner, len(posts))
	}
}
