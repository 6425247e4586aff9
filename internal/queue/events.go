package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task names dispatched over the task stream
const (
	TaskExportPosts = "export_posts"
)

// Stream names
const (
	StreamTasks = "stream:tasks"
)

// Consumer group name for task workers
const (
	ConsumerGroupTasks = "task_workers"
)

// TaskEvent represents a background job published to the task stream.
// The Redis message ID doubles as the job's id in the tasks table, so a
// job can be traced from launch through progress notifications to its row.
type TaskEvent struct {
	Name        string `json:"name"`        // TaskExportPosts, ...
	UserID      int64  `json:"user_id"`     // User the job runs on behalf of
	Description string `json:"description"` // Human-readable, shown in task listings
	Timestamp   int64  `json:"timestamp"`   // Unix timestamp when the job was launched

	// Optional per-task arguments
	Args map[string]string `json:"args,omitempty"`
}

// NewExportPostsEvent creates a job that exports a user's posts and emails
// them the archive.
func NewExportPostsEvent(userID int64) TaskEvent {
	return TaskEvent{
		Name:        TaskExportPosts,
		UserID:      userID,
		Description: "Exporting posts...",
		Timestamp:   time.Now().Unix(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e TaskEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"name": e.Name,
		"data": string(data),
	}, nil
}

// ParseTaskEvent parses a TaskEvent from Redis stream message values.
func ParseTaskEvent(values map[string]interface{}) (TaskEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return TaskEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event TaskEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return TaskEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
