package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

const userColumns = `id, username, email, password_hashed, about_me, last_seen,
       last_message_read_time, token, token_expiration, created_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, about_me, last_seen, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, last_seen, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.AboutMe,
	)

	if err := row.Scan(&u.ID, &u.LastSeen, &u.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// GetByToken retrieves the user holding the given API token.
func (r *userRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE token = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateToken stores (or clears, with nils) the API token and its expiry.
func (r *userRepository) UpdateToken(ctx context.Context, userID int64, token *string, expiration *time.Time) error {
	query := `UPDATE users SET token = $1, token_expiration = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, token, expiration, userID); err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error {
	query := `UPDATE users SET password_hashed = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, passwordHashed, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateAboutMe(ctx context.Context, userID int64, aboutMe *string) error {
	query := `UPDATE users SET about_me = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, aboutMe, userID); err != nil {
		return fmt.Errorf("failed to update about_me: %w", err)
	}
	return nil
}

func (r *userRepository) TouchLastSeen(ctx context.Context, userID int64, at time.Time) error {
	query := `UPDATE users SET last_seen = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to touch last_seen: %w", err)
	}
	return nil
}

func (r *userRepository) SetLastMessageReadTime(ctx context.Context, userID int64, at time.Time) error {
	query := `UPDATE users SET last_message_read_time = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to set last_message_read_time: %w", err)
	}
	return nil
}
