package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indexpulse/core/internal/repository"
)

// RequireAdmin runs after Auth/EnsureUser and rejects any caller whose
// user row is not flagged IsAdmin. Used to gate credential-pool
// management endpoints.
func RequireAdmin(repo repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := repo.FindByID(c.Request.Context(), c.GetString("userID"))
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "require admin lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
