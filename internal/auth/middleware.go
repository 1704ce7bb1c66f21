package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// RequireSession rejects the request with 401 unless it carries a live
// session cookie, and sets the userID in the context otherwise.
func RequireSession(sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if err != ErrNoSession {
				log.Printf("session lookup failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalSession sets the userID if a valid session cookie is present,
// but does not fail if it is missing or invalid.
func OptionalSession(sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if userID, err := sessions.Resolve(c.Request.Context(), token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the user set by one of the session middlewares.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
