package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/search"
)

// PostService handles the post streams and full-text search.
type PostService struct {
	repo     repository.PostRepository
	userRepo repository.UserRepository
	engine   search.Engine
}

func NewPostService(repo repository.PostRepository, userRepo repository.UserRepository, engine search.Engine) *PostService {
	return &PostService{
		repo:     repo,
		userRepo: userRepo,
		engine:   engine,
	}
}

// Create validates and stores a new post. The search index learns about it
// asynchronously through the outbox, never from this call.
func (s *PostService) Create(ctx context.Context, userID int64, body string) (*model.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrBodyRequired
	}
	if len(body) > model.MaxPostBodyLength {
		return nil, model.ErrBodyTooLong
	}

	post, err := s.repo.Create(ctx, userID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Printf("[PostService] Create OK: post=%d user=%d", post.ID, userID)
	return post, nil
}

// Timeline returns posts from followed accounts plus the user's own posts,
// newest first.
func (s *PostService) Timeline(ctx context.Context, userID int64, page, perPage int) (*model.PostListResponse, error) {
	posts, err := s.repo.Timeline(ctx, userID, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	return paginatePosts(posts, page, perPage), nil
}

// Explore returns the global post stream, newest first.
func (s *PostService) Explore(ctx context.Context, page, perPage int) (*model.PostListResponse, error) {
	posts, err := s.repo.Explore(ctx, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	return paginatePosts(posts, page, perPage), nil
}

// ByUser returns the named account's posts, newest first.
func (s *PostService) ByUser(ctx context.Context, username string, page, perPage int) (*model.PostListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.repo.ByUser(ctx, user.ID, perPage+1, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	return paginatePosts(posts, page, perPage), nil
}

// Search runs a full-text query against the index, then rehydrates the hits
// from the store preserving relevance order. With search disabled or the
// engine unreachable the result is empty, not an error.
func (s *PostService) Search(ctx context.Context, query string, page, perPage int) (*model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrQueryRequired
	}

	resp := &model.SearchResponse{
		Posts:   []model.Post{},
		Page:    page,
		PerPage: perPage,
	}

	if !s.engine.Enabled() {
		return resp, nil
	}

	ids, total, err := s.engine.Search(ctx, model.PostSearchIndex, query, (page-1)*perPage, perPage)
	if err != nil {
		// The store of record is unaffected by an engine outage, so the
		// query degrades to no hits instead of failing the request.
		log.Printf("[PostService] Search FAILED, returning empty result: q=%q err=%v", query, err)
		return resp, nil
	}

	resp.Total = total
	if len(ids) == 0 {
		return resp, nil
	}

	posts, err := s.repo.GetByIDsOrdered(ctx, ids)
	if err != nil {
		return nil, err
	}
	resp.Posts = posts

	return resp, nil
}

func paginatePosts(posts []model.Post, page, perPage int) *model.PostListResponse {
	hasMore := len(posts) > perPage
	if hasMore {
		posts = posts[:perPage]
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return &model.PostListResponse{
		Posts:   posts,
		Page:    page,
		PerPage: perPage,
		HasMore: hasMore,
	}
}
