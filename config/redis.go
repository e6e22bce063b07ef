package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// ConnectRedis initializes a singleton Redis client when REDIS_ENABLED is set.
// Returns the client (or nil when disabled) and an error if the ping failed.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		cfg := LoadConfig()
		if cfg.IsTest() || !cfg.RedisEnabled {
			return
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			redisClient = nil
			err = fmt.Errorf("redis ping failed: %w", err)
			return
		}

		redisClient = rdb
		log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	})
	return redisClient, err
}

// GetRedisClient returns the initialized Redis client (nil if disabled or ConnectRedis failed).
func GetRedisClient() *redis.Client {
	return redisClient
}

// UseRedisClient replaces the shared client, e.g. with a redismock client in tests.
// Passing nil disables Redis backed features and lets ConnectRedis run again.
func UseRedisClient(client *redis.Client) {
	redisClient = client
	if client == nil {
		redisOnce = sync.Once{}
	}
}
