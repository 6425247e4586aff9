package service

import (
	"context"
	"fmt"
	"log"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// FollowService manages the follower graph.
type FollowService struct {
	repo     repository.FollowRepository
	userRepo repository.UserRepository
}

func NewFollowService(repo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{repo: repo, userRepo: userRepo}
}

// Follow creates a follow edge to the named account. Following someone
// already followed is a no-op, not an error; the bool reports whether the
// edge is new.
func (s *FollowService) Follow(ctx context.Context, followerID int64, username string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	if target.ID == followerID {
		return false, model.ErrCannotFollowSelf
	}

	inserted, err := s.repo.Create(ctx, followerID, target.ID)
	if err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}

	if inserted {
		log.Printf("[FollowService] Follow OK: follower=%d followee=%d", followerID, target.ID)
	}
	return inserted, nil
}

// Unfollow removes the follow edge to the named account. Unfollowing someone
// not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID int64, username string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	if target.ID == followerID {
		return false, model.ErrCannotFollowSelf
	}

	removed, err := s.repo.Delete(ctx, followerID, target.ID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow: %w", err)
	}

	if removed {
		log.Printf("[FollowService] Unfollow OK: follower=%d followee=%d", followerID, target.ID)
	}
	return removed, nil
}

// Followers lists the accounts following the named user, newest edge first.
func (s *FollowService) Followers(ctx context.Context, username string, page, perPage int) (*model.FollowListResponse, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.GetFollowers(ctx, target.ID, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return paginateUsers(users, page, perPage), nil
}

// Following lists the accounts the named user follows, newest edge first.
func (s *FollowService) Following(ctx context.Context, username string, page, perPage int) (*model.FollowListResponse, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.GetFollowing(ctx, target.ID, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return paginateUsers(users, page, perPage), nil
}

// paginateUsers trims the limit+1 probe row into a HasMore flag.
func paginateUsers(users []model.UserSummary, page, perPage int) *model.FollowListResponse {
	hasMore := len(users) > perPage
	if hasMore {
		users = users[:perPage]
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	return &model.FollowListResponse{
		Users:   users,
		Page:    page,
		PerPage: perPage,
		HasMore: hasMore,
	}
}
