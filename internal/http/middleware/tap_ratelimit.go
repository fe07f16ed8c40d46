package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// TapRateLimit limits taps per account (not per IP) using Redis.
// Requires JWT middleware to run before this. Fail-open without Redis:
// the engine's own debounce and daily limit still apply.
func TapRateLimit(maxTaps int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		idVal, exists := c.Get("account_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		accountID, ok := idVal.(string)
		if !ok || accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid account"})
			return
		}

		key := "tap_rl:" + accountID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// fail-open on Redis errors
			c.Header("X-TapRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-TapRateLimit-Limit", strconv.Itoa(maxTaps))
		remaining := int64(maxTaps) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-TapRateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxTaps) {
			RLBlocked.WithLabelValues("tap:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "tap rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("tap:" + c.FullPath()).Inc()
		c.Next()
	}
}
