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

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

type launchTaskRequest struct {
	Name string `json:"name"`
}

// Launch enqueues a background job for the caller. One job per name may run
// at a time; a duplicate launch answers 409.
func (h *TaskHandler) Launch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req launchTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httputil.WriteBadRequest(w, "Task name is required")
		return
	}

	task, err := h.taskService.Launch(r.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownTask):
			httputil.WriteBadRequest(w, "Unknown task name")
		case errors.Is(err, model.ErrTaskAlreadyRunning):
			httputil.WriteConflict(w, "A task with this name is already in progress")
		default:
			log.Printf("[ERROR] LaunchTask handler: %v", err)
			httputil.WriteInternalError(w, "Failed to launch task")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, task)
}

// List returns the caller's in-progress tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.taskService.InProgress(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListTasks handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load tasks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Get returns one of the caller's tasks by id.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	taskID := chi.URLParam(r, "id")

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			httputil.WriteNotFound(w, "Task not found")
			return
		}
		log.Printf("[ERROR] GetTask handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load task")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, task)
}
