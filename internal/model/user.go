package model

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User represents an account in the system
type User struct {
	ID                  int64      `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"-"`
	PasswordHashed      string     `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AboutMe             *string    `db:"about_me" json:"about_me"`
	LastSeen            *time.Time `db:"last_seen" json:"last_seen"`
	LastMessageReadTime *time.Time `db:"last_message_read_time" json:"-"`
	Token               *string    `db:"token" json:"-"` // API bearer token, never exposed here
	TokenExpiration     *time.Time `db:"token_expiration" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// AvatarURL derives a gravatar URL from the account email.
func (u *User) AvatarURL(size int) string {
	digest := md5.Sum([]byte(strings.ToLower(u.Email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(digest[:]), size)
}

// TokenValid reports whether the stored API token is present and unexpired.
func (u *User) TokenValid(now time.Time) bool {
	return u.Token != nil && u.TokenExpiration != nil && u.TokenExpiration.After(now)
}

// UserSummary is the lightweight user representation used in listings.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// ProfileResponse is a user profile enriched with graph cardinalities.
type ProfileResponse struct {
	User           *User  `json:"user"`
	AvatarURL      string `json:"avatar_url"`
	PostCount      int64  `json:"post_count"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	IsFollowing    bool   `json:"is_following"`
}

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest is the request body for editing the caller's profile.
type UpdateProfileRequest struct {
	AboutMe *string `json:"about_me"`
}

// ResetPasswordRequestRequest asks for a reset link to be mailed.
type ResetPasswordRequestRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest redeems a reset token for a new password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// User constraints
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 120
	MaxAboutMeLength  = 140
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when an API or reset token is missing, malformed or expired
	ErrInvalidToken = errors.New("invalid or expired token")
)
