package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/handler"
	"microblog/internal/mail"
	"microblog/internal/model"
	"microblog/internal/queue"
	"microblog/internal/redis"
	"microblog/internal/repository"
	"microblog/internal/search"
	"microblog/internal/service"
)

// Run wires the API server and blocks serving requests.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (task queue)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 4. Search engine (optional; empty SEARCH_URL disables it)
	var engine search.Engine
	if cfg.SearchURL != "" {
		searchClient, err := redis.NewClient(cfg.SearchURL)
		if err != nil {
			return fmt.Errorf("failed to connect to search backend: %w", err)
		}
		defer searchClient.Close()
		engine = search.NewEngine(searchClient.Client)
	} else {
		engine = search.NewEngine(nil)
	}

	// The worker also ensures the index; doing it here too covers queries
	// that arrive before the worker has ever started. Failure is not fatal
	// because search degrades to empty results until the index exists.
	if err := engine.EnsureIndex(context.Background(), model.PostSearchIndex, []string{"body"}); err != nil {
		log.Printf("[Server] EnsureIndex FAILED, search degrades until the index exists: %v", err)
	}

	// 5. Mail
	mailer, err := mail.NewMailer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	// 6. Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// 7. Services
	publisher := queue.NewPublisher(redisClient.Client)
	notificationService := service.NewNotificationService(notificationRepo)
	userService := service.NewUserService(userRepo, followRepo, postRepo)
	authService := service.NewAuthService(userRepo, mailer, cfg)
	followService := service.NewFollowService(followRepo, userRepo)
	postService := service.NewPostService(postRepo, userRepo, engine)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationService)
	taskService := service.NewTaskService(taskRepo, publisher, notificationService)

	// 8. Handlers
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService),
		FollowHandler:       handler.NewFollowHandler(followService, cfg.PostsPerPage),
		PostHandler:         handler.NewPostHandler(postService, cfg.PostsPerPage),
		MessageHandler:      handler.NewMessageHandler(messageService, cfg.PostsPerPage),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		TaskHandler:         handler.NewTaskHandler(taskService),

		TokenChecker:    authService,
		LastSeenToucher: userService,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
