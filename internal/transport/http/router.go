package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"microblog/internal/handler"
	"microblog/internal/httputil"
	authmw "microblog/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	PostHandler         *handler.PostHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
	TaskHandler         *handler.TaskHandler

	TokenChecker    authmw.TokenChecker
	LastSeenToucher authmw.LastSeenToucher
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/reset_password_request", cfg.AuthHandler.RequestPasswordReset)
		r.Post("/reset_password", cfg.AuthHandler.ResetPassword)
	})

	// Public user endpoints with optional authentication
	optional := authmw.OptionalAuthMiddleware(cfg.TokenChecker)
	r.Route("/users/{username}", func(r chi.Router) {
		r.With(optional).Get("/", cfg.UserHandler.GetProfile)
		r.Get("/followers", cfg.FollowHandler.Followers)
		r.Get("/following", cfg.FollowHandler.Following)
		r.Get("/posts", cfg.PostHandler.ByUser)
	})

	r.Get("/explore", cfg.PostHandler.Explore)
	r.Get("/search", cfg.PostHandler.Search)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.TokenChecker, cfg.LastSeenToucher))

		// Current user endpoints
		r.Get("/me", cfg.UserHandler.GetMe)
		r.Put("/me", cfg.UserHandler.UpdateMe)

		r.Post("/auth/logout", cfg.AuthHandler.Logout)

		// Follow/unfollow actions require authentication
		r.Post("/users/{username}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{username}/follow", cfg.FollowHandler.Unfollow)

		// Private messages
		r.Post("/users/{username}/messages", cfg.MessageHandler.Send)
		r.Get("/messages", cfg.MessageHandler.Inbox)

		// Post endpoints
		r.Post("/posts", cfg.PostHandler.Create)
		r.Get("/feed", cfg.PostHandler.Timeline)

		// Notification polling
		r.Get("/notifications", cfg.NotificationHandler.List)

		// Background tasks
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", cfg.TaskHandler.Launch)
			r.Get("/", cfg.TaskHandler.List)
			r.Get("/{id}", cfg.TaskHandler.Get)
		})
	})

	return r
}
