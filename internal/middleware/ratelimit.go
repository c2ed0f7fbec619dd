package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stockroom-api/pkg/response"
)

// RateLimitMiddleware limits requests per client IP using a fixed window
// counter in redis. A nil client or non-positive limit disables the check,
// and redis outages fail open so the API stays usable without it.
func RateLimitMiddleware(rdb *redis.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			LogError("rate limiter unavailable: %v", err)
			c.Next()
			return
		}

		// First hit in the window owns the expiry.
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			response.TooManyRequests(c, "Rate limit exceeded, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
