package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-admin-service/internal/gateway"
	"storefront-admin-service/internal/models"
)

// HealthCheck responds to liveness and readiness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "storefront-admin-service"})
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

func serverError(c *gin.Context, code string, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: err.Error()},
	})
}

// upstreamError maps a storefront API failure onto the response. API
// errors keep their upstream status so the dashboard can distinguish
// validation failures from outages; everything else is a bad gateway.
func upstreamError(c *gin.Context, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		code := apiErr.Code
		if code == "" {
			code = "STORE_API_ERROR"
		}
		c.JSON(status, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: code, Message: apiErr.Message},
		})
		return
	}
	if errors.Is(err, gateway.ErrNotConnected) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_CONNECTED", Message: "No store is connected"},
		})
		return
	}
	c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "UPSTREAM_ERROR", Message: err.Error()},
	})
}
