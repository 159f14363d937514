package api

import (
	"errors"
	"net/http"

	"whatsapp-engine/internal/composer"
	"whatsapp-engine/internal/database"
	"whatsapp-engine/internal/template"
	"whatsapp-engine/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var missing *template.MissingSlotsError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   missing.Error(),
			"missing": missing.Missing,
			"count":   missing.Count(),
		})
	case errors.Is(err, composer.ErrWindowClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "template_required": true})
	case errors.Is(err, composer.ErrTemplateNotSent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, composer.ErrEmptyMessage), errors.Is(err, composer.ErrNoRecipient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, composer.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
