package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"microblog/internal/model"
	"microblog/internal/queue"
	"microblog/internal/repository"
)

// TaskService launches background jobs and tracks their lifecycle. The queue
// message id is the task id: publishing happens first, then the row is
// recorded under that id.
type TaskService struct {
	repo      repository.TaskRepository
	publisher queue.Publisher
	notifier  Notifier
}

func NewTaskService(repo repository.TaskRepository, publisher queue.Publisher, notifier Notifier) *TaskService {
	return &TaskService{
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
	}
}

// Launch enqueues a job for the user. At most one job per name may be in
// progress per user; a second launch fails with ErrTaskAlreadyRunning.
func (s *TaskService) Launch(ctx context.Context, userID int64, name string) (*model.Task, error) {
	var event queue.TaskEvent
	switch name {
	case model.TaskExportPosts:
		event = queue.NewExportPostsEvent(userID)
	default:
		return nil, model.ErrUnknownTask
	}

	_, err := s.repo.InProgressByName(ctx, userID, name)
	if err == nil {
		return nil, model.ErrTaskAlreadyRunning
	}
	if !errors.Is(err, model.ErrTaskNotFound) {
		return nil, fmt.Errorf("failed to check running tasks: %w", err)
	}

	taskID, err := s.publisher.Publish(ctx, queue.StreamTasks, event)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	task := &model.Task{
		ID:          taskID,
		Name:        name,
		Description: &event.Description,
		UserID:      userID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		// The job is already queued; the worker will still run it and
		// SetComplete will hit a missing row. Surface the error so the
		// client doesn't treat the launch as tracked.
		return nil, fmt.Errorf("failed to record task: %w", err)
	}

	log.Printf("[TaskService] Launch OK: task=%s name=%s user=%d", taskID, name, userID)
	return task, nil
}

// ReportProgress publishes a task_progress notification to the job's owner
// and marks the task row complete when progress reaches 100.
func (s *TaskService) ReportProgress(ctx context.Context, taskID string, userID int64, progress int) error {
	payload := model.TaskProgressPayload{TaskID: taskID, Progress: progress}
	if err := s.notifier.Notify(ctx, userID, model.NotificationTaskProgress, payload); err != nil {
		log.Printf("[TaskService] ReportProgress: notification failed: task=%s err=%v", taskID, err)
	}

	if progress >= 100 {
		if err := s.repo.SetComplete(ctx, taskID); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		log.Printf("[TaskService] Task complete: task=%s user=%d", taskID, userID)
	}

	return nil
}

// InProgress lists the caller's unfinished tasks.
func (s *TaskService) InProgress(ctx context.Context, userID int64) (*model.TaskListResponse, error) {
	tasks, err := s.repo.InProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &model.TaskListResponse{Tasks: tasks}, nil
}

// Get returns one of the caller's tasks by id.
func (s *TaskService) Get(ctx context.Context, userID int64, taskID string) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, model.ErrTaskNotFound
	}
	return task, nil
}
