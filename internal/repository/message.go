package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, senderID, recipientID int64, body string) (*model.Message, error) {
	msg := &model.Message{SenderID: senderID, RecipientID: recipientID, Body: body}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO messages (sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, senderID, recipientID, body)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

func (r *messageRepository) Received(ctx context.Context, recipientID int64, limit, offset int) ([]model.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.body, m.created_at
		FROM messages m
		WHERE m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3
	`
	var messages []model.Message
	if err := r.db.SelectContext(ctx, &messages, query, recipientID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get received messages: %w", err)
	}
	return messages, nil
}

// CountUnread counts messages received after the recipient's read marker.
// Accounts that never opened their inbox have a NULL marker, so everything
// counts.
func (r *messageRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN users u ON u.id = m.recipient_id
		WHERE m.recipient_id = $1
		  AND m.created_at > COALESCE(u.last_message_read_time, 'epoch'::timestamptz)
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
