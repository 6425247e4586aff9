package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. ON CONFLICT DO NOTHING makes repeated follows
// idempotent; the bool reports whether this call created the edge.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes the edge; deleting a missing edge is a no-op.
func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, followerID, followeeID); err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE followee_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *followRepository) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE follower_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

func (r *followRepository) GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}
