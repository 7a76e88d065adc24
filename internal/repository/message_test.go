package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"buzzsway/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMessageRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	msg := &models.Message{SenderID: 1, ReceiverID: 2, Content: "hey"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "messages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	err := repo.Create(ctx, msg)
	assert.NoError(t, err)
	assert.Equal(t, uint(10), msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_GetConversation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	t.Run("Merged Ordered History", func(t *testing.T) {
		now := time.Now()
		// The driver returns rows newest first; callers get them reversed.
		rows := sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "content", "created_at"}).
			AddRow(3, 1, 2, "how are you", now).
			AddRow(2, 2, 1, "hello", now.Add(-time.Minute)).
			AddRow(1, 1, 2, "hi", now.Add(-2*time.Minute))
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)).
			WithArgs(1, 2, 2, 1, 50).
			WillReturnRows(rows)

		messages, err := repo.GetConversation(ctx, 1, 2, 50, 0)
		assert.NoError(t, err)
		assert.Len(t, messages, 3)
		// Both directions are present, oldest first
		assert.Equal(t, uint(1), messages[0].ID)
		assert.Equal(t, uint(2), messages[1].SenderID)
		assert.Equal(t, uint(3), messages[2].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("First Page Is The Newest Messages", func(t *testing.T) {
		now := time.Now()
		// A 2-message page of a longer conversation holds the two most
		// recent messages, still oldest first within the page.
		rows := sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "content", "created_at"}).
			AddRow(100, 2, 1, "latest", now).
			AddRow(99, 1, 2, "second latest", now.Add(-time.Second))
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)).
			WithArgs(1, 2, 2, 1, 2).
			WillReturnRows(rows)

		messages, err := repo.GetConversation(ctx, 1, 2, 2, 0)
		assert.NoError(t, err)
		assert.Len(t, messages, 2)
		assert.Equal(t, uint(99), messages[0].ID)
		assert.Equal(t, uint(100), messages[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Conversation", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)).
			WithArgs(1, 99, 99, 1, 50).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		messages, err := repo.GetConversation(ctx, 1, 99, 50, 0)
		assert.NoError(t, err)
		assert.Empty(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMessageRepository_GetPartners(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(2, "bob").
		AddRow(5, "eve")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT receiver_id FROM messages WHERE sender_id`)).
		WithArgs(1, 1).
		WillReturnRows(rows)

	partners, err := repo.GetPartners(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, partners, 2)
	assert.Equal(t, "bob", partners[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
