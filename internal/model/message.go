package model

import (
	"errors"
	"time"
)

// Message is a private message between two accounts. Like posts, messages
// are immutable after creation. They are never search-indexed.
type Message struct {
	ID          int64     `db:"id" json:"id"`
	SenderID    int64     `db:"sender_id" json:"sender_id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined field
	Sender *UserSummary `json:"sender,omitempty"`
}

// MessageListResponse is the paginated received-message listing.
type MessageListResponse struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
	HasMore  bool      `json:"has_more"`
}

// SendMessageRequest is the request body for sending a private message.
type SendMessageRequest struct {
	Body string `json:"body"`
}

const MaxMessageBodyLength = 280

var (
	ErrMessageBodyRequired = errors.New("message body is required")
	ErrMessageBodyTooLong  = errors.New("message body too long")
)
