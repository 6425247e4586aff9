package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/mail"
	"microblog/internal/model"
	"microblog/internal/queue"
	"microblog/internal/redis"
	"microblog/internal/repository"
	"microblog/internal/search"
	"microblog/internal/service"
	"microblog/internal/storage"
	"microblog/internal/worker"
)

const outboxDrainInterval = 2 * time.Second
const outboxBatchSize = 100

func main() {
	reindex := flag.Bool("reindex", false, "rebuild the post search index from the database and exit")
	flag.Parse()

	if err := run(*reindex); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

func run(reindex bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Search backend is optional; without it the outbox still drains (into
	// no-ops) so rows don't pile up.
	var engine search.Engine
	if cfg.SearchURL != "" {
		searchClient, err := redis.NewClient(cfg.SearchURL)
		if err != nil {
			return err
		}
		defer searchClient.Close()
		engine = search.NewEngine(searchClient.Client)
	} else {
		engine = search.NewEngine(nil)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if reindex {
		_, err := search.ReindexPosts(ctx, engine, postRepo)
		return err
	}

	if err := engine.EnsureIndex(ctx, model.PostSearchIndex, []string{"body"}); err != nil {
		return err
	}

	mailer, err := mail.NewMailer(cfg)
	if err != nil {
		return err
	}

	notificationService := service.NewNotificationService(notificationRepo)
	publisher := queue.NewPublisher(redisClient.Client)
	taskService := service.NewTaskService(taskRepo, publisher, notificationService)

	handler := worker.NewHandler(userRepo, postRepo, taskService, mailer)
	if store, err := storage.NewExportStore(ctx, cfg); err != nil {
		log.Printf("Export storage not configured, archives ship as attachments only: %v", err)
	} else {
		handler.SetArchiveStore(store)
	}

	consumer := queue.NewConsumer(redisClient.Client)
	manager := worker.NewManager(consumer, handler, worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return err
	}

	syncer := search.NewSyncer(outboxRepo, engine, outboxBatchSize, outboxDrainInterval)
	go syncer.Run(ctx)

	<-ctx.Done()
	log.Println("Shutdown signal received")
	manager.Stop()
	return nil
}
