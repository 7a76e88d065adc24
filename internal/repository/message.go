package repository

import (
	"context"

	"buzzsway/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct-message persistence.
// Messages are immutable once written; there is no update or delete path.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetConversation(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error)
	GetPartners(ctx context.Context, userID uint) ([]models.User, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetConversation returns a page of the merged two-way history between
// userA and userB in chronological order. Pages are taken from the newest
// end, so offset 0 holds the most recent limit messages and larger offsets
// walk back in time. The serial id breaks ties between rows created in the
// same clock tick, so the order is stable across reads.
func (r *messageRepository) GetConversation(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetPartners returns every user this user has exchanged at least one
// message with, in either direction.
func (r *messageRepository) GetPartners(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where(`users.id IN (
			SELECT receiver_id FROM messages WHERE sender_id = ?
			UNION
			SELECT sender_id FROM messages WHERE receiver_id = ?
		)`, userID, userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}
