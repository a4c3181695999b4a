package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LimitWindow is how long a user's submission count lives.
const LimitWindow = 24 * time.Hour

// Counter is the slice of Redis the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisCounter adapts a go-redis client to Counter.
type RedisCounter struct {
	Client *redis.Client
}

func (r RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return r.Client.Incr(ctx, key).Result()
}

func (r RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.Client.Expire(ctx, key, ttl).Err()
}

func (r RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.Client.TTL(ctx, key).Result()
}

// IssueRateLimiter caps how many issues one user may submit per
// LimitWindow. It must run after AuthMiddleware.
func IssueRateLimiter(counter Counter, prefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
			return
		}

		ctx := c.Request.Context()
		userKey := prefix + ":" + userID

		count, err := counter.Incr(ctx, userKey)
		if err != nil {
			slog.Error("redis error incrementing count", "key", userKey, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := counter.Expire(ctx, userKey, LimitWindow); err != nil {
				slog.Error("redis error setting TTL", "key", userKey, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := counter.TTL(ctx, userKey)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
