package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/database"
	"github.com/pageza/snapfeed/backend/internal/server"
	"github.com/pageza/snapfeed/backend/internal/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Starting in %s environment", config.GetEnvironment())

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = redisClient.Close() }()
	}

	store, err := imageStore(cfg, db)
	if err != nil {
		log.Fatalf("Failed to set up image store: %v", err)
	}

	// Create and start server
	srv := server.New(cfg, db, redisClient, store)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func imageStore(cfg *config.Config, db *gorm.DB) (service.ImageStore, error) {
	if cfg.ImageStore != config.ImageStoreS3 {
		log.Printf("Storing images in the database")
		return service.NewDBStore(db), nil
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Storing images in S3 bucket %s", s3Config.BucketName)
	return service.NewS3Store(s3Config), nil
}
