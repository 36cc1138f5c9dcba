package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/cache"
	apperrors "github.com/zfogg/blogicum/internal/errors"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware creates a fixed-window rate limiter shared by all
// server instances through Redis. Without a Redis client it falls back to the
// in-memory token bucket limiter.
func RedisRateLimitMiddleware(rc *cache.RedisClient, config RateLimitConfig) gin.HandlerFunc {
	if rc == nil {
		logger.Log.Info("Redis not configured, using in-memory rate limiter",
			zap.Int("limit", config.Limit),
			zap.Duration("window", config.Window),
		)
		return NewRateLimiter(config)
	}
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}

	return func(c *gin.Context) {
		clientKey := config.KeyFunc(c)
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), clientKey)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rc.IncrWindow(ctx, key, config.Window)
		if err != nil {
			// Reject rather than run unthrottled while the limiter is down
			logger.Log.Error("Rate limit check failed - rejecting request",
				logger.WithIP(c.ClientIP()),
				zap.Error(err),
			)
			util.RenderAppError(c, apperrors.ServiceUnavailable("rate limiter").WithDetails(err.Error()))
			return
		}

		if count > int64(config.Limit) {
			retryAfter := int(config.Window.Seconds())
			if ttl, err := rc.TTL(ctx, key); err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds()) + 1
			}

			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int("max_requests", config.Limit),
				zap.Int64("current_requests", count),
			)
			rejectRateLimited(c, config.Limit, retryAfter)
			return
		}

		c.Next()
	}
}
