package repository

import (
	"context"
	"time"

	"microblog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByToken finds the account holding the given API token; expiry is
	// checked by the caller.
	GetByToken(ctx context.Context, token string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateToken(ctx context.Context, userID int64, token *string, expiration *time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error
	UpdateAboutMe(ctx context.Context, userID int64, aboutMe *string) error
	TouchLastSeen(ctx context.Context, userID int64, at time.Time) error
	SetLastMessageReadTime(ctx context.Context, userID int64, at time.Time) error
}

type FollowRepository interface {
	// Create inserts the edge and reports whether a row was actually
	// inserted (false when the edge already existed).
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Delete removes the edge and reports whether a row was removed.
	Delete(ctx context.Context, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	FollowerCount(ctx context.Context, userID int64) (int64, error)
	FollowingCount(ctx context.Context, userID int64) (int64, error)
	GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
}

type PostRepository interface {
	// Create inserts the post and its search outbox row in one transaction,
	// so the index mirror never sees a post that was rolled back.
	Create(ctx context.Context, userID int64, body string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDsOrdered hydrates posts preserving the order of ids; ids with
	// no backing row are silently dropped.
	GetByIDsOrdered(ctx context.Context, ids []int64) ([]model.Post, error)
	// Timeline returns posts authored by accounts the user follows or by
	// the user itself, newest first.
	Timeline(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
	// Explore returns the global post stream, newest first.
	Explore(ctx context.Context, limit, offset int) ([]model.Post, error)
	ByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	// AllByUserAsc streams every post of one author oldest-first (export job).
	AllByUserAsc(ctx context.Context, userID int64) ([]model.Post, error)
	// ListAfter pages through all posts by ascending id (reindex helper).
	ListAfter(ctx context.Context, afterID int64, limit int) ([]model.Post, error)
}

type MessageRepository interface {
	Create(ctx context.Context, senderID, recipientID int64, body string) (*model.Message, error)
	Received(ctx context.Context, recipientID int64, limit, offset int) ([]model.Message, error)
	// CountUnread counts received messages newer than the recipient's
	// last_message_read_time.
	CountUnread(ctx context.Context, recipientID int64) (int, error)
}

type NotificationRepository interface {
	// Upsert atomically replaces the (userID, name) notification.
	Upsert(ctx context.Context, userID int64, name string, timestamp float64, payloadJSON string) error
	// ListSince returns notifications with timestamp strictly greater than
	// since, ascending by (timestamp, id).
	ListSince(ctx context.Context, userID int64, since float64) ([]model.Notification, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	SetComplete(ctx context.Context, id string) error
	InProgress(ctx context.Context, userID int64) ([]model.Task, error)
	// InProgressByName returns the running task with this name, or
	// model.ErrTaskNotFound when none is in progress.
	InProgressByName(ctx context.Context, userID int64, name string) (*model.Task, error)
}

// OutboxEntry is one pending search-index operation, written in the same
// transaction as the domain change it mirrors.
type OutboxEntry struct {
	ID          int64     `db:"id"`
	IndexName   string    `db:"index_name"`
	DocID       int64     `db:"doc_id"`
	Op          string    `db:"op"`
	PayloadJSON string    `db:"payload_json"`
	CreatedAt   time.Time `db:"created_at"`
}

// Outbox operations.
const (
	OutboxOpIndex  = "index"
	OutboxOpDelete = "delete"
)

type OutboxRepository interface {
	// FetchBatch returns the oldest pending entries in id order.
	FetchBatch(ctx context.Context, limit int) ([]OutboxEntry, error)
	// Delete removes applied entries.
	Delete(ctx context.Context, ids []int64) error
}
