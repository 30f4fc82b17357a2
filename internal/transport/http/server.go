package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialfeed/internal/cache"
	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/handler"
	"socialfeed/internal/queue"
	"socialfeed/internal/redis"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"
	"socialfeed/internal/worker"
)

// Run wires the full application and serves HTTP until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	postLikeRepo := repository.NewPostLikeRepository(db)
	commentLikeRepo := repository.NewCommentLikeRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Cache and queue
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Feed fan-out workers
	workerHandler := worker.NewHandler(feedCache, followRepo, postRepo)
	workerManager := worker.NewManager(consumer, workerHandler, cfg.FeedWorkerCount)
	if err := workerManager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer workerManager.Stop()

	// Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, postRepo)
	graphService := service.NewGraphService(followRepo, userRepo, db, publisher)
	postService := service.NewPostService(postRepo, commentRepo, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo)
	likeService := service.NewLikeService(postLikeRepo, commentLikeRepo, db)
	searchService := service.NewSearchService(userRepo, followRepo, postLikeRepo, commentLikeRepo)
	feedService := service.NewFeedService(feedCache, postRepo, followRepo)

	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService),
		RelationshipHandler: handler.NewRelationshipHandler(graphService),
		SearchHandler:       handler.NewSearchHandler(searchService, userService),
		PostHandler:         handler.NewPostHandler(postService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		LikeHandler:         handler.NewLikeHandler(likeService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
