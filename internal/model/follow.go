package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type FollowListResponse struct {
	Users   []UserSummary `json:"users"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	HasMore bool          `json:"has_more"`
}

var (
	// ErrCannotFollowSelf is enforced by the follow service; the graph
	// layer itself accepts any ordered pair.
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
