package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosepilot/reminder-service/internal/repository"
)

// EnsureUser runs after Auth. It upserts the authenticated user into the
// users table so that reminder/device/delivery FK constraints are always
// satisfied.
func EnsureUser(repo repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		email := c.GetString("userEmail")
		if err := repo.Upsert(c.Request.Context(), userID, email); err != nil {
			logger.ErrorContext(c.Request.Context(), "ensure user upsert", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		c.Next()
	}
}
