package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"buzzsway/internal/models"
	"buzzsway/internal/notifications"
)

func TestMessageServiceSendValidation(t *testing.T) {
	svc := NewMessageService(noopMessageRepo(), noopUserRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SendMessageInput
	}{
		{name: "missing sender", in: SendMessageInput{ReceiverID: 2, Content: "hi"}},
		{name: "missing receiver", in: SendMessageInput{SenderID: 1, Content: "hi"}},
		{name: "empty content", in: SendMessageInput{SenderID: 1, ReceiverID: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.in)
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected validation app error, got %#v", err)
			}
		})
	}
}

func TestMessageServiceSendPersistFailureAbortsDelivery(t *testing.T) {
	repo := noopMessageRepo()
	repo.createFn = func(context.Context, *models.Message) error {
		return errors.New("disk full")
	}

	registry := notifications.NewRegistry()
	receiver := registerClient(registry, 2, "bob")
	drainClient(receiver)

	svc := NewMessageService(repo, noopUserRepo(), registry)
	_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 2, Content: "hi"})
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if frames := collectFrames(t, receiver, "receive-private-msg"); len(frames) != 0 {
		t.Fatalf("nothing should be delivered when persistence fails, got %d frames", len(frames))
	}
}

func TestMessageServiceSendOfflineReceiverStillPersists(t *testing.T) {
	persisted := false
	repo := noopMessageRepo()
	repo.createFn = func(_ context.Context, m *models.Message) error {
		persisted = true
		m.ID = 42
		return nil
	}

	svc := NewMessageService(repo, noopUserRepo(), notifications.NewRegistry())
	msg, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 2, Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if !persisted {
		t.Fatal("message must be persisted even with the receiver offline")
	}
	if msg.ID != 42 {
		t.Fatalf("expected persisted message back, got %#v", msg)
	}
}

func TestMessageServiceSendPushesToReceiverAndEchoesOrigin(t *testing.T) {
	repo := noopMessageRepo()
	repo.createFn = func(_ context.Context, m *models.Message) error {
		m.ID = 7
		return nil
	}

	registry := notifications.NewRegistry()
	receiver := registerClient(registry, 2, "bob")
	origin := registerClient(registry, 1, "alice")
	drainClient(receiver)
	drainClient(origin)

	svc := NewMessageService(repo, noopUserRepo(), registry)
	if _, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: 1, ReceiverID: 2, Content: "hi", Origin: origin,
	}); err != nil {
		t.Fatal(err)
	}

	for name, c := range map[string]*notifications.Client{"receiver": receiver, "origin": origin} {
		frames := collectFrames(t, c, "receive-private-msg")
		if len(frames) != 1 {
			t.Fatalf("%s should get exactly one message frame, got %d", name, len(frames))
		}
		payload, ok := frames[0]["message"].(map[string]any)
		if !ok || payload["content"] != "hi" {
			t.Fatalf("%s got malformed message frame: %#v", name, frames[0])
		}
	}
}

func TestMessageServiceSendDoesNotEchoViaRegistryLookup(t *testing.T) {
	repo := noopMessageRepo()

	registry := notifications.NewRegistry()
	// The sender's registered connection is NOT the one the send came from.
	registered := registerClient(registry, 1, "alice")
	origin := notifications.NewClient(registry, nil, 1, "alice")
	drainClient(registered)
	drainClient(origin)

	svc := NewMessageService(repo, noopUserRepo(), registry)
	if _, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: 1, ReceiverID: 2, Content: "hi", Origin: origin,
	}); err != nil {
		t.Fatal(err)
	}

	if frames := collectFrames(t, origin, "receive-private-msg"); len(frames) != 1 {
		t.Fatalf("origin connection should get the echo, got %d frames", len(frames))
	}
	if frames := collectFrames(t, registered, "receive-private-msg"); len(frames) != 0 {
		t.Fatalf("the registered connection must not get the echo, got %d frames", len(frames))
	}
}

func TestMessageServiceHistorySymmetry(t *testing.T) {
	var calls [][2]uint
	repo := noopMessageRepo()
	repo.getConversationFn = func(_ context.Context, a, b uint, _, _ int) ([]models.Message, error) {
		calls = append(calls, [2]uint{a, b})
		return []models.Message{
			{ID: 1, SenderID: 1, ReceiverID: 2, Content: "hi"},
			{ID: 2, SenderID: 2, ReceiverID: 1, Content: "hello"},
		}, nil
	}

	svc := NewMessageService(repo, noopUserRepo(), nil)
	ctx := context.Background()

	ab, err := svc.History(ctx, 1, 2, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := svc.History(ctx, 2, 1, 50, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(ab) != len(ba) {
		t.Fatalf("history should be symmetric: %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].ID != ba[i].ID {
			t.Fatalf("history order differs at %d: %d vs %d", i, ab[i].ID, ba[i].ID)
		}
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 repository calls, got %d", len(calls))
	}
}

func registerClient(r *notifications.Registry, userID uint, username string) *notifications.Client {
	c := notifications.NewClient(r, nil, userID, username)
	r.Register(c)
	return c
}

func drainClient(c *notifications.Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

// collectFrames drains a client's buffer and returns the decoded frames of
// the given type.
func collectFrames(t *testing.T, c *notifications.Client, frameType string) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for {
		select {
		case raw := <-c.Send:
			var frame map[string]any
			if err := json.Unmarshal(raw, &frame); err != nil {
				t.Fatalf("malformed frame: %v", err)
			}
			if frame["type"] == frameType {
				frames = append(frames, frame)
			}
		default:
			return frames
		}
	}
}
