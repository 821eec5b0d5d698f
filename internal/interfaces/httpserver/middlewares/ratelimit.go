package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"support-chat/chat-api/internal/infrastructure/ratelimit"
)

// CustomerRateLimit throttles customer endpoints per session, falling
// back to the client IP when no session id is supplied.
func CustomerRateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Customer-Session")
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
