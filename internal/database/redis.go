package database

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// redisOptions builds client options from cfg. REDIS_URL takes precedence
// over the host, port, password and database settings.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		return opts, nil
	}
	if cfg.RedisHost == "" {
		return nil, fmt.Errorf("redis is not configured")
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// NewRedisClient connects to the Redis server used for session revocation
// and rate limiting, failing if it does not answer a PING.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = redisDialTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.Printf("Connected to Redis at %s (db %d)", opts.Addr, opts.DB)
	return client, nil
}
