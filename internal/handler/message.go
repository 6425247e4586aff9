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

type MessageHandler struct {
	messageService *service.MessageService
	perPage        int
}

func NewMessageHandler(messageService *service.MessageService, perPage int) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		perPage:        perPage,
	}
}

// Send delivers a private message to the named account.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, username, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrMessageBodyRequired):
			httputil.WriteBadRequest(w, "Message body is required")
		case errors.Is(err, model.ErrMessageBodyTooLong):
			httputil.WriteBadRequest(w, "Message body too long")
		default:
			log.Printf("[ERROR] SendMessage handler: %v", err)
			httputil.WriteInternalError(w, "Failed to send message")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// Inbox lists the caller's received messages and marks them read.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	page, perPage := httputil.ParsePagination(r, h.perPage, 100)

	resp, err := h.messageService.ListReceived(r.Context(), userID, page, perPage)
	if err != nil {
		log.Printf("[ERROR] Inbox handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load messages")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
