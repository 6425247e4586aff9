package model

import (
	"encoding/json"
)

// Notification event names. At most one live notification exists per
// (user, name): writing a new one replaces the previous value, so the feed
// stays bounded by the number of distinct names rather than events emitted.
const (
	NotificationUnreadMessageCount = "unread_message_count"
	NotificationTaskProgress       = "task_progress"
)

// Notification is one coalesced event in a user's notification feed.
// Timestamp is wall-clock seconds (fractional) and doubles as the ordering
// key for the polling endpoint, with the row id as tie-break.
type Notification struct {
	ID          int64   `db:"id" json:"-"`
	UserID      int64   `db:"user_id" json:"-"`
	Name        string  `db:"name" json:"name"`
	Timestamp   float64 `db:"timestamp" json:"timestamp"`
	PayloadJSON string  `db:"payload_json" json:"-"`
}

// Data decodes the JSON payload. Malformed payloads decode to nil; the
// payload is opaque to this layer.
func (n *Notification) Data() interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(n.PayloadJSON), &v); err != nil {
		return nil
	}
	return v
}

// NotificationView is the polling endpoint's wire format.
type NotificationView struct {
	Name      string      `json:"name"`
	Data      interface{} `json:"data"`
	Timestamp float64     `json:"timestamp"`
}

// TaskProgressPayload is the payload for task_progress notifications.
type TaskProgressPayload struct {
	TaskID   string `json:"task_id"`
	Progress int    `json:"progress"`
}
