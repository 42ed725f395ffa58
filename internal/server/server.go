package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/router"
	"github.com/pageza/snapfeed/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler http.Handler
	http    *http.Server
}

// New builds the services on top of db and the image store and wraps the
// router in an HTTP server. redisClient may be nil, in which case sessions
// are revoked in memory and rate limits are off.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store service.ImageStore) *Server {
	var blocklist service.TokenBlocklist
	if redisClient != nil {
		blocklist = service.NewRedisBlocklist(redisClient)
	} else {
		log.Printf("[Server] Redis not configured; session revocation is in-memory and rate limiting is disabled")
		blocklist = service.NewMemoryBlocklist()
	}

	images := service.NewImageService(store, cfg.MaxUploadBytes)
	handler := router.SetupRouter(cfg, &router.Services{
		DB:       db,
		Redis:    redisClient,
		Auth:     service.NewAuthService(db, cfg.JWTSecret, cfg.BcryptCost, blocklist),
		Profiles: service.NewProfileService(db, images),
		Posts:    service.NewPostService(db, images),
		Comments: service.NewCommentService(db),
		Search:   service.NewSearchService(db),
		Images:   images,
	})

	return &Server{
		handler: handler,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
