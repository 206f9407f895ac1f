package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeepanshiGandhi/Image-Tracker/limiter"
)

// RateLimitMiddleware enforces the per-caller ceiling on beacon routes.
// Caller identity is the client IP; a breach drops the ping before any
// enrichment or recording happens.
func RateLimitMiddleware(l limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
