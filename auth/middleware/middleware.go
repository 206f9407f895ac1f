package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DeepanshiGandhi/Image-Tracker/auth"
)

const (
	userIDKey     = "userID"
	privilegedKey = "privileged"
)

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthOptional attaches the requester identity when a valid token is
// present and continues unauthenticated otherwise.
func AuthOptional(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ValidateToken(secret, token); err == nil {
				c.Set(userIDKey, claims.UserID)
				c.Set(privilegedKey, claims.Privileged)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a valid token.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		claims, err := auth.ValidateToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(privilegedKey, claims.Privileged)
		c.Next()
	}
}

// AdminRequired runs after AuthRequired and rejects unprivileged callers.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Privileged(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// RequesterID returns the authenticated user id, or the empty string.
func RequesterID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		return v.(string)
	}
	return ""
}

func Privileged(c *gin.Context) bool {
	if v, ok := c.Get(privilegedKey); ok {
		return v.(bool)
	}
	return false
}
