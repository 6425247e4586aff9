package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// MessageService handles private messages and the unread-count notification
// that rides along with them.
type MessageService struct {
	repo     repository.MessageRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewMessageService(repo repository.MessageRepository, userRepo repository.UserRepository, notifier Notifier) *MessageService {
	return &MessageService{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// Send delivers a private message to the named account and refreshes the
// recipient's unread_message_count notification. The notification is best
// effort: a failure there never loses the message.
func (s *MessageService) Send(ctx context.Context, senderID int64, recipientUsername, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrMessageBodyRequired
	}
	if len(body) > model.MaxMessageBodyLength {
		return nil, model.ErrMessageBodyTooLong
	}

	recipient, err := s.userRepo.GetByUsername(ctx, recipientUsername)
	if err != nil {
		return nil, err
	}

	msg, err := s.repo.Create(ctx, senderID, recipient.ID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if unread, err := s.repo.CountUnread(ctx, recipient.ID); err == nil {
		if err := s.notifier.Notify(ctx, recipient.ID, model.NotificationUnreadMessageCount, unread); err != nil {
			log.Printf("[MessageService] Send: unread notification failed: %v", err)
		}
	} else {
		log.Printf("[MessageService] Send: unread count failed: %v", err)
	}

	log.Printf("[MessageService] Send OK: message=%d from=%d to=%d", msg.ID, senderID, recipient.ID)
	return msg, nil
}

// ListReceived returns the caller's inbox newest first. Opening the inbox
// moves the read marker and zeroes the unread notification, so everything
// currently listed counts as read.
func (s *MessageService) ListReceived(ctx context.Context, userID int64, page, perPage int) (*model.MessageListResponse, error) {
	if err := s.userRepo.SetLastMessageReadTime(ctx, userID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update read marker: %w", err)
	}

	if err := s.notifier.Notify(ctx, userID, model.NotificationUnreadMessageCount, 0); err != nil {
		log.Printf("[MessageService] ListReceived: unread notification failed: %v", err)
	}

	messages, err := s.repo.Received(ctx, userID, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > perPage
	if hasMore {
		messages = messages[:perPage]
	}
	if messages == nil {
		messages = []model.Message{}
	}

	return &model.MessageListResponse{
		Messages: messages,
		Page:     page,
		PerPage:  perPage,
		HasMore:  hasMore,
	}, nil
}
