package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (id, name, description, user_id, complete)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.UserID); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT id, name, description, user_id, complete FROM tasks WHERE id = $1`

	var t model.Task
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task by id: %w", err)
	}
	return &t, nil
}

func (r *taskRepository) SetComplete(ctx context.Context, id string) error {
	query := `UPDATE tasks SET complete = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark task complete: %w", err)
	}
	return nil
}

func (r *taskRepository) InProgress(ctx context.Context, userID int64) ([]model.Task, error) {
	query := `
		SELECT id, name, description, user_id, complete
		FROM tasks
		WHERE user_id = $1 AND complete = FALSE
	`
	var tasks []model.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tasks in progress: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) InProgressByName(ctx context.Context, userID int64, name string) (*model.Task, error) {
	query := `
		SELECT id, name, description, user_id, complete
		FROM tasks
		WHERE user_id = $1 AND name = $2 AND complete = FALSE
		LIMIT 1
	`
	var t model.Task
	err := r.db.GetContext(ctx, &t, query, userID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task in progress: %w", err)
	}
	return &t, nil
}
