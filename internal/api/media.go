package api

import (
	"errors"
	"fmt"
	"net/http"

	"whatsapp-engine/internal/whatsapp"
	"whatsapp-engine/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	media MediaSource
}

func NewMediaHandler(media MediaSource) *MediaHandler {
	return &MediaHandler{media: media}
}

// Proxy streams provider media for a locator of the form
// /api/media/<id>/<filename>. The provider URL needs the access token,
// so clients never fetch it directly.
func (h *MediaHandler) Proxy(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media source not configured"})
		return
	}
	id := c.Param("id")
	body, mimeType, err := h.media.DownloadMedia(c.Request.Context(), id)
	if err != nil {
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
			return
		}
		logger.Error().Err(err).Str("media_id", id).Msg("Media download failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch media"})
		return
	}
	defer body.Close()

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, mimeType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", c.Param("filename")),
		"Cache-Control":       "private, max-age=3600",
	})
}
