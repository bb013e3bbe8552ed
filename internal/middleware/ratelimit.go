package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stafflink/core/internal/pkg/response"
)

const (
	rateLimitMax    = 10
	rateLimitWindow = time.Second
)

// RateLimit enforces a per-IP sliding-window limit. Applied to the login
// endpoint to slow down credential stuffing; a Redis failure lets the
// request through.
func RateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().Unix()
		key := fmt.Sprintf("sl:rate_limit:%s:%d", ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}
		if count > rateLimitMax {
			response.TooManyRequests(c, "Too many requests")
			return
		}
		c.Next()
	}
}
