package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated user's ID, set by the edge proxy
	// after token verification
	UserIDHeader = "X-User-ID"

	// UserIDKey is the key used to store the user ID in the context
	UserIDKey = "user_id"
)

// Identity middleware extracts the caller's user ID from the request.
// It never rejects: endpoints that require authentication check the
// extracted identity themselves.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserIDHeader); userID != "" {
			c.Set(UserIDKey, userID)
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the gin context,
// returning an empty string for anonymous requests
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}
