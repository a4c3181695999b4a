package middlewares

import (
	"log/slog"
	"net/http"
	"strings"

	"gramsetu-be/models"
	authUtils "gramsetu-be/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey   = "user_id"
	UserNameKey = "user_name"
	UserRoleKey = "user_role"
)

// CookieName is the session cookie set at login.
const CookieName = "auth_token"

// AuthMiddleware accepts a session from the auth_token cookie or a
// Bearer Authorization header.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if cookie, err := c.Cookie(CookieName); err == nil {
			tokenString = cookie
		}
		if tokenString == "" {
			authHeader := c.Request.Header.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No authorization token provided"})
			return
		}

		claims, err := authUtils.ParseToken(secret, tokenString)
		if err != nil {
			slog.Debug("token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserNameKey, claims.Name)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles. It
// must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(UserRoleKey))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "You are not allowed to do this"})
	}
}
