package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
	perPage     int
}

func NewPostHandler(postService *service.PostService, perPage int) *PostHandler {
	return &PostHandler{
		postService: postService,
		perPage:     perPage,
	}
}

// Create publishes a new post by the caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrBodyRequired):
			httputil.WriteBadRequest(w, "Post body is required")
		case errors.Is(err, model.ErrBodyTooLong):
			httputil.WriteBadRequest(w, "Post body too long")
		default:
			log.Printf("[ERROR] CreatePost handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Timeline returns posts from followed accounts plus the caller's own.
func (h *PostHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.postService.Timeline(r.Context(), userID, page, perPage)
	if err != nil {
		log.Printf("[ERROR] Timeline handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load timeline")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Explore returns the global post stream.
func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.postService.Explore(r.Context(), page, perPage)
	if err != nil {
		log.Printf("[ERROR] Explore handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ByUser returns the named account's posts.
func (h *PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.postService.ByUser(r.Context(), username, page, perPage)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] UserPosts handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Search runs a full-text query over post bodies.
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.postService.Search(r.Context(), query, page, perPage)
	if err != nil {
		if errors.Is(err, model.ErrQueryRequired) {
			httputil.WriteBadRequest(w, "Query parameter 'q' is required")
			return
		}
		log.Printf("[ERROR] Search handler: %v", err)
		httputil.WriteInternalError(w, "Search failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
