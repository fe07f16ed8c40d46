package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientWindow struct {
	start time.Time
	count int
}

// SimpleRateLimit is the in-process fixed-window fallback used when Redis
// is not configured. State is per-process, so it only protects a single
// instance.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientWindow)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		cw, ok := clients[ip]
		if !ok || now.Sub(cw.start) > window {
			clients[ip] = &clientWindow{start: now, count: 1}
			mu.Unlock()
			c.Next()
			return
		}
		cw.count++
		blocked := cw.count > maxRequests
		mu.Unlock()

		if blocked {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
