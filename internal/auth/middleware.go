package auth

import (
	"strings"

	"codeberg.org/biolink/client/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// authenticates requests by bearer token or session cookie
func Middleware(issuer *TokenIssuer, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || scheme != "Bearer" {
				errors.Unauthorized(c, "invalid authorization header format")
				return
			}

			claims, err := issuer.Validate(token)
			if err != nil {
				errors.Unauthorized(c, "invalid or expired token")
				return
			}

			c.Set(contextUserKey, claims.UserID)
			c.Set(contextEmail, claims.Email)
			c.Next()
			return
		}

		userID, ok := SessionUserID(store, c.Request)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// extracts user_id from context after Middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserKey)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok
}
