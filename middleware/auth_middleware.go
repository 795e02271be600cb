package middleware

import (
	"strings"

	"coachingportal/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts identity-provider tokens from the Authorization header and puts
// the caller on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return authenticate(jwtSecret, false)
}

// StreamAuthMiddleware also accepts ?token=, since EventSource cannot set headers.
// Mount it only on the notification stream.
func StreamAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return authenticate(jwtSecret, true)
}

func authenticate(jwtSecret string, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" && allowQueryToken && c.GetHeader("Authorization") == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		claims, err := utils.VerifyToken(token, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.UnauthorizedResponse(c, "User role not found")
			c.Abort()
			return
		}

		userRole, ok := role.(string)
		if !ok || userRole != requiredRole {
			utils.ForbiddenResponse(c, "Insufficient privileges")
			c.Abort()
			return
		}

		c.Next()
	}
}
