package models

import "time"

// Message is a direct message between two users. Messages are immutable
// once created and are the only persisted record of a conversation.
// Conversation order is (CreatedAt, ID): the serial ID breaks timestamp
// ties by insertion order.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_sender" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_receiver" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
