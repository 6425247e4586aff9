package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// Notifier publishes coalesced notifications to a user's feed. Split out so
// services emitting notifications can be tested without the full service.
type Notifier interface {
	Notify(ctx context.Context, userID int64, name string, payload interface{}) error
}

// NotificationService manages each user's coalesced notification feed.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification, replacing any previous one with the same
// name. The timestamp is wall-clock seconds with microsecond precision; a
// client polling with the last timestamp it saw picks up the replacement.
func (s *NotificationService) Notify(ctx context.Context, userID int64, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	timestamp := float64(time.Now().UnixMicro()) / 1e6
	if err := s.repo.Upsert(ctx, userID, name, timestamp, string(data)); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// ListSince returns the user's notifications newer than the given timestamp,
// oldest first. since=0 returns the whole live set.
func (s *NotificationService) ListSince(ctx context.Context, userID int64, since float64) ([]model.NotificationView, error) {
	notifications, err := s.repo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	views := make([]model.NotificationView, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		views = append(views, model.NotificationView{
			Name:      n.Name,
			Data:      n.Data(),
			Timestamp: n.Timestamp,
		})
	}
	return views, nil
}
