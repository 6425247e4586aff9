package handler

import (
	"log"
	"net/http"
	"strconv"

	"microblog/internal/httputil"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns the caller's notifications newer than the since parameter.
// Clients poll with the highest timestamp they have seen; omitting since
// returns the whole live set.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var since float64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid 'since' parameter")
			return
		}
		since = parsed
	}

	notifications, err := h.notificationService.ListSince(r.Context(), userID, since)
	if err != nil {
		log.Printf("[ERROR] Notifications handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}
