package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"counsel/internal/config"
	"counsel/internal/user"
)

// Middleware authenticates a request: Bearer token, claim verification, and
// a live Redis session holding that exact token. On success the user's id,
// name and role are attached to the gin context and the session's
// inactivity window restarts.
func Middleware(cfg *config.Config, sessions *SessionStore, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Missing or invalid Authorization header"}})
			return
		}
		claims, err := VerifyToken(cfg.Server.JWTSecret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		stored, err := sessions.Token(c.Request.Context(), claims.UserID)
		if err != nil || stored != raw {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Session expired or invalid"}})
			return
		}
		_ = sessions.Touch(c.Request.Context(), claims.UserID, raw)

		c.Set("userId", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		if adminOnly && claims.Role != string(user.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Admin only"}})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
