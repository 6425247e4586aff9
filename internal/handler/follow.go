package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	perPage       int
}

func NewFollowHandler(followService *service.FollowService, perPage int) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		perPage:       perPage,
	}
}

// Follow makes the caller follow the named account. Repeating the call is a
// no-op, both answer 204.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")
	if _, err := h.followService.Follow(r.Context(), userID, username); err != nil {
		writeFollowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow removes the caller's follow edge to the named account.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")
	if _, err := h.followService.Unfollow(r.Context(), userID, username); err != nil {
		writeFollowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Followers lists accounts following the named user.
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.followService.Followers(r.Context(), username, page, perPage)
	if err != nil {
		writeFollowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Following lists accounts the named user follows.
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.followService.Following(r.Context(), username, page, perPage)
	if err != nil {
		writeFollowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func writeFollowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteBadRequest(w, "Cannot follow yourself")
	default:
		log.Printf("[ERROR] Follow handler: %v", err)
		httputil.WriteInternalError(w, "Operation failed")
	}
}
