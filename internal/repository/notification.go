package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Upsert replaces the live notification for (userID, name) in one statement.
// The unique constraint on (user_id, name) makes this atomic: two concurrent
// writers cannot leave zero or two rows the way delete-then-insert could.
func (r *notificationRepository) Upsert(ctx context.Context, userID int64, name string, timestamp float64, payloadJSON string) error {
	query := `
		INSERT INTO notifications (user_id, name, timestamp, payload_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE
		SET timestamp = EXCLUDED.timestamp, payload_json = EXCLUDED.payload_json
	`
	if _, err := r.db.ExecContext(ctx, query, userID, name, timestamp, payloadJSON); err != nil {
		return fmt.Errorf("failed to upsert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListSince(ctx context.Context, userID int64, since float64) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, name, timestamp, payload_json
		FROM notifications
		WHERE user_id = $1 AND timestamp > $2
		ORDER BY timestamp ASC, id ASC
	`
	var notifications []model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, since); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
