package model

import (
	"errors"
)

// Task names dispatched by the worker.
const (
	TaskExportPosts = "export_posts"
)

// Task records one submitted background job. The id is assigned by the queue
// when the job is enqueued (the stream message id), so the application and
// the worker share a single identifier. Rows accumulate; nothing deletes
// them.
type Task struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	UserID      int64   `db:"user_id" json:"-"`
	Complete    bool    `db:"complete" json:"complete"`
}

// TaskListResponse lists the caller's in-progress tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyRunning = errors.New("a task with this name is already in progress")
	ErrUnknownTask        = errors.New("unknown task name")
)
