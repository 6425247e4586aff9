package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"microblog/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and its search outbox row in a single transaction.
// The outbox row only becomes visible once the post commits, so the index
// mirror can never pick up a post that was rolled back.
func (r *postRepository) Create(ctx context.Context, userID int64, body string) (*model.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	post := &model.Post{UserID: userID, Body: body}
	row := tx.QueryRowxContext(ctx, `
		INSERT INTO posts (user_id, body, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`, userID, body)
	if err := row.Scan(&post.ID, &post.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO search_outbox (index_name, doc_id, op, payload_json, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, model.PostSearchIndex, post.ID, OutboxOpIndex, string(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to insert outbox row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return post, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		WHERE p.id = $1
	`
	var p model.Post
	err := r.db.GetContext(ctx, &p, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &p, nil
}

// GetByIDsOrdered hydrates posts in the order the ids were given, mirroring
// the search engine's relevance ranking. Ids no longer present in the store
// are dropped silently.
func (r *postRepository) GetByIDsOrdered(ctx context.Context, ids []int64) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		WHERE p.id = ANY($1)
		ORDER BY array_position($1::bigint[], p.id)
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}
	return posts, nil
}

// Timeline selects posts whose author the user follows, or the user's own
// posts. The GROUP BY deduplicates: a post appears once no matter how many
// join paths reach its author. Equal timestamps tie-break on id descending.
func (r *postRepository) Timeline(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		LEFT JOIN follows f ON f.followee_id = p.user_id AND f.follower_id = $1
		WHERE f.follower_id IS NOT NULL OR p.user_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Explore(ctx context.Context, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get explore stream: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get user posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM posts WHERE user_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *postRepository) AllByUserAsc(ctx context.Context, userID int64) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		WHERE p.user_id = $1
		ORDER BY p.created_at ASC, p.id ASC
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get all user posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.created_at
		FROM posts p
		WHERE p.id > $1
		ORDER BY p.id ASC
		LIMIT $2
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("failed to list posts after id: %w", err)
	}
	return posts, nil
}
