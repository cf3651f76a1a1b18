package middleware

import (
	"net/http"
	"os"

	"stallpoint/api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthRequired guards routes that act on behalf of a user. It requires a
// JWT carried in the cookie set at login (or a Bearer token for
// non-browser clients) and sets user_id, user_email and session_id on the
// context for the handlers behind it.
func AuthRequired(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateJWT(c, logger) {
			return
		}
		c.Next()
	}
}

// AdminAccess guards the admin reporting routes. The admin API key grants
// access without a user identity, so handlers behind it must not read
// user_id; a JWT works here too and carries the identity as usual.
func AdminAccess(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != "" && apiKey == os.Getenv("ADMIN_API_KEY") {
			c.Next()
			return
		}

		if !authenticateJWT(c, logger) {
			return
		}
		c.Next()
	}
}

// authenticateJWT validates the request's JWT and stores its claims on the
// context. On failure it aborts with 401 and returns false.
func authenticateJWT(c *gin.Context, logger *zap.SugaredLogger) bool {
	tokenString, err := c.Cookie("jwt_token")
	if err != nil {
		tokenString = c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return false
		}
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		logger.Debugw("rejected token", "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
		return false
	}

	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("session_id", claims.SessionID)
	return true
}
