package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/models"
	"storefront-admin-service/internal/storeapi"
)

// MediaHandler proxies file uploads into the store's media library.
type MediaHandler struct {
	media *storeapi.MediaClient
	log   *logrus.Entry
}

func NewMediaHandler(media *storeapi.MediaClient, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{
		media: media,
		log:   logger.WithField("component", "media_handler"),
	}
}

// UploadMedia accepts a multipart file and returns the public URL the
// dashboard attaches to product image payloads.
// POST /api/v1/media
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "FILE_REQUIRED", "Please upload a file")
		return
	}
	defer file.Close()

	media, err := h.media.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, storeapi.ErrNoMediaToken) {
			c.JSON(http.StatusPreconditionFailed, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "MEDIA_TOKEN_MISSING",
					Message: "Configure the media upload user in settings first",
				},
			})
			return
		}
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": media})
}
