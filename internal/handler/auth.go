package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already exists")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		default:
			httputil.WriteBadRequest(w, err.Error())
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}

// Login authenticates with username/password and returns an API token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteUnauthorized(w, "Invalid username or password")
		return
	}

	token, expiresAt, err := h.authService.GetToken(r.Context(), user)
	if err != nil {
		log.Printf("[ERROR] Login handler: %v", err)
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout revokes the caller's API token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.authService.RevokeToken(r.Context(), user); err != nil {
		log.Printf("[ERROR] Logout handler: %v", err)
		httputil.WriteInternalError(w, "Failed to revoke token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset mails a reset token. Always answers 202 so the
// endpoint can't be used to probe which emails have accounts.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Printf("[ERROR] RequestPasswordReset handler: %v", err)
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the email is registered, a reset token has been sent",
	})
}

// ResetPassword redeems a reset token for a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			httputil.WriteUnauthorized(w, "Invalid or expired reset token")
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset",
	})
}
