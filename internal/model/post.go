package model

import (
	"errors"
	"time"
)

// Post is a public blog post. Posts are append-only: there is no edit or
// delete operation, so the struct never carries update metadata.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined field (not in posts table)
	Author *UserSummary `json:"author,omitempty"`
}

// PostListResponse is the paginated post list response used by the timeline,
// the explore stream and per-user post listings.
type PostListResponse struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	HasMore bool   `json:"has_more"`
}

// SearchResponse is the paginated full-text search result.
type SearchResponse struct {
	Posts   []Post `json:"posts"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Body string `json:"body"`
}

// Post constraints
const (
	MaxPostBodyLength = 280

	// PostSearchIndex is the search index posts are mirrored into.
	PostSearchIndex = "posts"
)

// Post errors
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrBodyRequired  = errors.New("post body is required")
	ErrBodyTooLong   = errors.New("post body too long")
	ErrQueryRequired = errors.New("search query is required")
)
