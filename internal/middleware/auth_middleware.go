package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "betterme/backend/internal/errors"
	"betterme/backend/internal/service"
)

const UserIDContextKey = "userID"

func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		userID, apiErr := authService.ParseToken(token)
		if apiErr != nil {
			c.AbortWithStatusJSON(apiErr.Status, gin.H{
				"error": gin.H{"code": apiErr.Code, "message": apiErr.Message},
			})
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	value, ok := c.Get(UserIDContextKey)
	if !ok {
		return ""
	}
	userID, ok := value.(string)
	if !ok {
		return ""
	}
	return userID
}

func abortUnauthorized(c *gin.Context, message string) {
	apiErr := apperrors.Unauthorized(message)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{"code": apiErr.Code, "message": apiErr.Message},
	})
}
