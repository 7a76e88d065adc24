// Package service provides application business logic (messaging, posts, users, etc.).
package service

import (
	"context"
	"encoding/json"

	"buzzsway/internal/middleware"
	"buzzsway/internal/models"
	"buzzsway/internal/notifications"
	"buzzsway/internal/observability"
	"buzzsway/internal/repository"
)

const maxMessageContentLen = 10000 // 10K characters

// MessageService provides direct-message business logic: durable persistence
// first, then best-effort live delivery through the presence registry.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	registry    *notifications.Registry
}

// SendMessageInput is the input for sending a direct message. Origin is the
// websocket client the send arrived on, when it arrived over a socket; the
// persisted message is echoed back to it. HTTP sends leave Origin nil.
type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
	Origin     *notifications.Client
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	registry *notifications.Registry,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		registry:    registry,
	}
}

// Send persists the message and then attempts live delivery. Persistence
// failure aborts the send; delivery failure does not. The receiver gets the
// message if they hold a registered connection, and the originating
// connection gets an echo so the sender's view stays consistent.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.SenderID == 0 || in.ReceiverID == 0 {
		return nil, models.NewValidationError("Sender and receiver are required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(in.Content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	message := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.deliver(message, in.Origin)
	return message, nil
}

// deliver pushes the persisted message to the receiver's live connection and
// echoes it to the originating connection. Failures are counted and logged,
// never returned: the message is already durable and history reads will
// surface it.
func (s *MessageService) deliver(message *models.Message, origin *notifications.Client) {
	if s.registry == nil {
		return
	}

	frame, err := json.Marshal(map[string]any{
		"type":    "receive-private-msg",
		"message": message,
	})
	if err != nil {
		middleware.Logger.Error("failed to encode message frame", "message_id", message.ID, "error", err)
		observability.MessagesDelivered.WithLabelValues("encode_error").Inc()
		return
	}

	if receiver, ok := s.registry.Lookup(message.ReceiverID); ok {
		receiver.TrySend(frame)
		observability.MessagesDelivered.WithLabelValues("pushed").Inc()
	} else {
		observability.MessagesDelivered.WithLabelValues("offline").Inc()
	}

	if origin != nil {
		origin.TrySend(frame)
	}
}

// History returns a page of the merged two-way conversation between two
// users, oldest first within the page. Pages run from the newest end of the
// conversation, so offset 0 is the most recent limit messages. The arguments
// are symmetric: History(a, b) and History(b, a) return the same sequence.
func (s *MessageService) History(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error) {
	if userA == 0 || userB == 0 {
		return nil, models.NewValidationError("Both conversation participants are required")
	}
	messages, err := s.messageRepo.GetConversation(ctx, userA, userB, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// ConversationPartners returns the users this user has exchanged at least one
// message with.
func (s *MessageService) ConversationPartners(ctx context.Context, userID uint) ([]models.User, error) {
	partners, err := s.messageRepo.GetPartners(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return partners, nil
}
