package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// Rate limiting defaults
	defaultRateLimit  = 30          // 30 predictions
	defaultRateWindow = time.Minute // per minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfigFromEnv reads PREDICT_RATE_LIMIT and PREDICT_RATE_WINDOW.
func RateLimitConfigFromEnv() RateLimitConfig {
	cfg := config.LoadConfig()
	return RateLimitConfig{Limit: cfg.PredictRateLimit, Window: cfg.PredictRateWindow}
}

func rateLimitKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// RateLimiter counts requests per route and client IP in Redis. Without a
// Redis client every request passes.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit == 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window == 0 {
		cfg.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		allowed, err := checkRateLimit(c.Request.Context(), rateLimitKey(endpoint, clientIP), cfg.Limit, cfg.Window)
		if err != nil {
			// Fail open when Redis errors.
			log.WithError(err).WithField("client_ip", clientIP).Warn("rate limit check failed")
			c.Next()
			return
		}

		if !allowed {
			log.WithFields(log.Fields{"client_ip": clientIP, "endpoint": endpoint}).Warn("rate limit exceeded")
			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			util.CallRateLimited(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// checkRateLimit checks if a request is within rate limits
// Returns true if allowed, false if rate limit exceeded
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}

	pipe := rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	// NX keeps the window anchored at the first request.
	pipe.ExpireNX(ctx, key, window)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return incrCmd.Val() <= int64(limit), nil
}

// resetRateLimit clears the counter of one client on one route.
func resetRateLimit(ctx context.Context, clientIP, endpoint string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return fmt.Errorf("redis not available")
	}
	return rdb.Del(ctx, rateLimitKey(endpoint, clientIP)).Err()
}
