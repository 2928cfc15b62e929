package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-admin-service/internal/models"
	"storefront-admin-service/internal/session"
)

// RequireConnection rejects store-facing requests before any network
// call when no session is active. The connect endpoints themselves are
// not behind this guard.
func RequireConnection(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessions.Current(); !ok {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_CONNECTED",
					Message: "No store is connected. Connect a store first.",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
