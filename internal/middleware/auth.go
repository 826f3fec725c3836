package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userId"
	RoleKey   = "role"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

// AuthMiddleware accepts a bearer token from the Authorization header, or
// from the token query parameter for websocket clients.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			unauthorized(c, "Not authorized to access this route")
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, "Not authorized to access this route")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, string(claims.Role))
		c.Next()
	}
}

// Authorize lets only the given roles through. It must run after
// AuthMiddleware. Rejections answer 401 like every other auth failure.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(RoleKey))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		unauthorized(c, "User role "+string(role)+" is not authorized to access this route")
	}
}
